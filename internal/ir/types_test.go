package ir

import "testing"

func TestBlockAnonymous(t *testing.T) {
	b := &Block{}
	if !b.Anonymous() {
		t.Error("expected a block with no label to be anonymous")
	}
	b.Label = "loop"
	if b.Anonymous() {
		t.Error("expected a block with a label to not be anonymous")
	}
}

func TestFinalizeBlockEmpty(t *testing.T) {
	b := &Block{}
	Finalize(b)
	if b.Typ != TypeNone {
		t.Errorf("empty block: got %s, want %s", b.Typ, TypeNone)
	}
}

func TestFinalizeBlockTakesTailType(t *testing.T) {
	b := &Block{List: []Expr{
		&Const{Typ: TypeI32, Value: int64(1)},
		&Const{Typ: TypeI64, Value: int64(2)},
	}}
	Finalize(b)
	if b.Typ != TypeI64 {
		t.Errorf("got %s, want %s", b.Typ, TypeI64)
	}
}

func TestFinalizeBreak(t *testing.T) {
	cases := []struct {
		name      string
		condition Expr
		value     Expr
		want      Type
	}{
		{"unconditional", nil, nil, TypeUnreachable},
		{"unconditional with value", nil, &Const{Typ: TypeI32}, TypeUnreachable},
		{"conditional without value", &Const{Typ: TypeI32}, nil, TypeNone},
		{"conditional with value", &Const{Typ: TypeI32}, &Const{Typ: TypeI64}, TypeI64},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			br := &Break{Condition: c.condition, Value: c.value}
			Finalize(br)
			if br.Typ != c.want {
				t.Errorf("got %s, want %s", br.Typ, c.want)
			}
		})
	}
}

func TestTypeIsConcrete(t *testing.T) {
	if TypeNone.IsConcrete() || TypeUnreachable.IsConcrete() {
		t.Error("none and unreachable must not be concrete")
	}
	if !TypeI32.IsConcrete() || !TypeF64.IsConcrete() {
		t.Error("i32 and f64 must be concrete")
	}
}
