package contact

import (
	"context"
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	ok := Inquiry{Name: "Ana", Email: "ana@mail.com", Message: "¿Pasean gatos?"}

	cases := []struct {
		name   string
		in     Inquiry
		fields map[string]string
	}{
		{"valid without phone", ok, nil},
		{"valid phone", Inquiry{Name: "Ana", Email: "ana@mail.com", Phone: "+54 (11) 5555-4444", Message: "hola"}, nil},
		{"all empty", Inquiry{}, map[string]string{
			"nombre":   MsgNameRequired,
			"email":    MsgEmailRequired,
			"consulta": MsgMessageRequired,
		}},
		{"bad email", Inquiry{Name: "Ana", Email: "ana@mail", Message: "x"}, map[string]string{"email": MsgEmailInvalid}},
		{"short phone", Inquiry{Name: "Ana", Email: "ana@mail.com", Phone: "12345", Message: "x"}, map[string]string{"telefono": MsgPhoneInvalid}},
		{"letters in phone", Inquiry{Name: "Ana", Email: "ana@mail.com", Phone: "11-5555-abcd", Message: "x"}, map[string]string{"telefono": MsgPhoneInvalid}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.in)
			if tc.fields == nil {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) || !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Fields) != len(tc.fields) {
				t.Fatalf("fields = %v, want %v", ve.Fields, tc.fields)
			}
			for k, v := range tc.fields {
				if ve.Fields[k] != v {
					t.Fatalf("field %s = %q, want %q", k, ve.Fields[k], v)
				}
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	svc := NewService(nil)

	msg, err := svc.Submit(context.Background(), Inquiry{Name: "Ana", Email: "ana@mail.com", Message: "hola"})
	if err != nil || msg != MsgSent {
		t.Fatalf("unexpected (%q, %v)", msg, err)
	}

	if _, err := svc.Submit(context.Background(), Inquiry{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
