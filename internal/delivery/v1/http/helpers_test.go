package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tea-corner/go-backend/pkg/e"
)

func TestParsePriceToKopecks(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{input: "600", want: 60000},
		{input: "599.99", want: 59999},
		{input: "0.01", want: 1},
		{input: "", wantErr: e.ErrInvalidPrice},
		{input: "abc", wantErr: e.ErrInvalidPrice},
		{input: "-10", wantErr: e.ErrInvalidPrice},
		{input: "0", wantErr: e.ErrInvalidPrice},
		{input: "10.123", wantErr: e.ErrPricePrecision},
		{input: "1000000001", wantErr: e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		got, err := parsePriceToKopecks(tt.input)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("input %q: expected %v, got %v", tt.input, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("input %q: unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("input %q: expected %d kopecks, got %d", tt.input, tt.want, got)
		}
	}
}

func TestParseWeight(t *testing.T) {
	weight, err := parseWeight("50.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weight == nil || weight.String() != "50.5" {
		t.Fatalf("unexpected weight: %v", weight)
	}

	weight, err = parseWeight("")
	if err != nil || weight != nil {
		t.Fatalf("empty weight must be allowed, got %v, %v", weight, err)
	}

	for _, input := range []string{"-1", "0", "пятьдесят"} {
		if _, err := parseWeight(input); !errors.Is(err, e.ErrInvalidWeight) {
			t.Fatalf("input %q: expected ErrInvalidWeight, got %v", input, err)
		}
	}
}

func TestToHTTPResponseMapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: e.ErrProductNotFound, code: http.StatusNotFound},
		{err: e.ErrProductExists, code: http.StatusBadRequest},
		{err: e.ErrInvalidPrice, code: http.StatusBadRequest},
		{err: e.Wrap("op", e.ErrProductNotFound), code: http.StatusNotFound},
		{err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if code, _ := ToHTTPResponse(tt.err); code != tt.code {
			t.Fatalf("error %v: expected %d, got %d", tt.err, tt.code, code)
		}
	}
}
