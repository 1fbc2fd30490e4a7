package filament

import (
	"errors"
	"strings"
	"testing"
)

func TestValidBool(t *testing.T) {
	v := ValidBool(func(n int) bool { return n > 0 })

	if got := v(5); !got.Valid {
		t.Errorf("expected valid, got %+v", got)
	}
	if got := v(-5); got.Valid {
		t.Errorf("expected invalid, got %+v", got)
	}
}

func TestStructRules(t *testing.T) {
	type profile struct {
		Email string `validate:"required,email"`
		Age   int    `validate:"gte=0,lte=150"`
	}
	v := StructRules[profile]()

	if got := v(profile{Email: "ada@example.com", Age: 36}); !got.Valid {
		t.Errorf("expected valid, got %+v", got)
	}

	got := v(profile{Email: "not-an-email", Age: 36})
	if got.Valid {
		t.Error("expected invalid email rejected")
	}
	if !strings.Contains(got.Err, "Email") {
		t.Errorf("expected the failing field named, got %q", got.Err)
	}

	if got := v(profile{Email: "ada@example.com", Age: 200}); got.Valid {
		t.Error("expected out-of-range age rejected")
	}
}

func TestStructRulesOnSignal(t *testing.T) {
	type account struct {
		Owner   string `validate:"required"`
		Balance int    `validate:"gte=0"`
	}
	rt := newTestRuntime()
	sig := NewSignal(rt, account{Owner: "ada"}, WithValidator(StructRules[account]()))

	if err := sig.Set(account{Owner: "ada", Balance: 10}); err != nil {
		t.Fatalf("expected valid write accepted, got %v", err)
	}
	if err := sig.Set(account{Owner: "", Balance: 10}); !errors.Is(err, ErrRejected) {
		t.Errorf("expected missing owner rejected, got %v", err)
	}
	if err := sig.Set(account{Owner: "ada", Balance: -1}); !errors.Is(err, ErrRejected) {
		t.Errorf("expected negative balance rejected, got %v", err)
	}

	v, _ := sig.Get()
	if v.Balance != 10 {
		t.Errorf("expected last accepted value kept, got %+v", v)
	}
}
