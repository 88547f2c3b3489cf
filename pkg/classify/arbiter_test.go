package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zen-systems/taxnav/pkg/adapter"
)

func TestSelectBestParsesCommonShapes(t *testing.T) {
	candidates := []string{"Televisions", "TV Mounts", "Headphones"}
	cases := []struct {
		response string
		want     int
	}{
		{"2", 1},
		{"2.", 1},
		{"Option 3", 2},
		{"  1\n", 0},
	}

	for _, tc := range cases {
		mock := adapter.NewMockAdapter(tc.response)
		arb := NewArbiter(mock, "gpt-4.1-mini", nil)
		got, err := arb.SelectBest(context.Background(), "a television", candidates)
		if err != nil {
			t.Fatalf("response %q: %v", tc.response, err)
		}
		if got != tc.want {
			t.Fatalf("response %q: got %d want %d", tc.response, got, tc.want)
		}
	}
}

func TestSelectBestRejectsOutOfRange(t *testing.T) {
	candidates := []string{"Televisions", "Headphones"}
	for _, response := range []string{"0", "3", "99"} {
		mock := adapter.NewMockAdapter(response)
		arb := NewArbiter(mock, "gpt-4.1-mini", nil)
		_, err := arb.SelectBest(context.Background(), "a television", candidates)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("response %q: expected ErrInvalidSelection, got %v", response, err)
		}
	}
}

func TestSelectBestRejectsNonNumeric(t *testing.T) {
	for _, response := range []string{"", "none", "Televisions", "no idea"} {
		mock := adapter.NewMockAdapter(response)
		arb := NewArbiter(mock, "gpt-4.1-mini", nil)
		_, err := arb.SelectBest(context.Background(), "a television", []string{"A", "B"})
		if !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("response %q: expected ErrInvalidSelection, got %v", response, err)
		}
	}
}

func TestSelectBestPromptNumbersAllCandidates(t *testing.T) {
	mock := adapter.NewMockAdapter("1")
	arb := NewArbiter(mock, "gpt-4.1-mini", nil)
	candidates := []string{"Televisions", "Headphones", "Shoes"}
	if _, err := arb.SelectBest(context.Background(), "a television", candidates); err != nil {
		t.Fatalf("select: %v", err)
	}

	prompt := mock.Requests()[0].Prompt
	for i, name := range candidates {
		if !strings.Contains(prompt, fmt.Sprintf("%d. %s", i+1, name)) {
			t.Fatalf("prompt missing option %d (%s)", i+1, name)
		}
	}
	if !strings.Contains(prompt, "between 1 and 3") {
		t.Fatalf("prompt missing bounds")
	}
}
