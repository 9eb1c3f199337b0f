package validator

import (
	"errors"
	"testing"
)

type sample struct {
	Identifier string `validate:"required,identifier"`
	Phone      string `validate:"omitempty,phone"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{name: "email ok", in: sample{Identifier: "a@x.com"}},
		{name: "phone ok", in: sample{Identifier: "+6281234567890", Phone: "6281234567890"}},
		{name: "bad identifier", in: sample{Identifier: "not an id"}, wantFields: []string{"identifier"}},
		{name: "bad phone", in: sample{Identifier: "a@x.com", Phone: "12ab56"}, wantFields: []string{"phone"}},
		{name: "missing", in: sample{Phone: "+1"}, wantFields: []string{"identifier", "phone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want V10ValidationError", err)
			}
			for _, f := range tt.wantFields {
				if _, ok := verr.Values()[f]; !ok {
					t.Fatalf("missing field %q in %v", f, verr.Values())
				}
			}
		})
	}
}
