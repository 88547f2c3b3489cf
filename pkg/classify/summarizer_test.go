package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/taxnav/pkg/adapter"
)

func TestSummarizeTrimsAndReturnsVerbatim(t *testing.T) {
	mock := adapter.NewMockAdapter("")
	mock.Script = []string{"  Television (TV, flat-screen display). Viewing device.  \n"}

	s := NewSummarizer(mock, "gpt-4.1-nano", nil)
	summary, err := s.Summarize(context.Background(), "Samsung 65-inch QLED TV with Quantum Dot technology")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary != "Television (TV, flat-screen display). Viewing device." {
		t.Fatalf("summary: %q", summary)
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests: %d", len(reqs))
	}
	if reqs[0].Model != "gpt-4.1-nano" {
		t.Fatalf("model: %q", reqs[0].Model)
	}
	if reqs[0].System == "" || reqs[0].MaxTokens != summaryMaxTokens {
		t.Fatalf("request shape: %+v", reqs[0])
	}
}

func TestSummarizeOracleFailurePropagates(t *testing.T) {
	mock := adapter.NewMockAdapter("")
	mock.Err = &adapter.AdapterError{Status: 500, Err: errors.New("upstream down")}

	s := NewSummarizer(mock, "gpt-4.1-nano", nil)
	if _, err := s.Summarize(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error")
	}
}
