package ir

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestError_WithDetail(t *testing.T) {
	base := NewError(CodeRender, "no mapping")
	withDetail := base.WithDetail("field", "published")

	if base.Details != nil {
		t.Error("WithDetail must not mutate the receiver")
	}
	if withDetail.Details["field"] != "published" {
		t.Errorf("Details = %v", withDetail.Details)
	}
	merged := withDetail.WithDetails(map[string]any{"descriptor": "v.Note"})
	if len(merged.Details) != 2 {
		t.Errorf("merged Details = %v", merged.Details)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"direct", NewError(CodeCollision, "x"), CodeCollision},
		{"wrapped", fmt.Errorf("stage: %w", NewError(CodeDiscovery, "x")), CodeDiscovery},
		{"joined", errors.Join(NewError(CodeClassification, "a"), NewError(CodeClassification, "b")), CodeClassification},
		{"canceled", fmt.Errorf("load: %w", context.Canceled), CodeCanceled},
		{"plain", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	err := fmt.Errorf("render: %w", errors.Join(
		NewError(CodeRender, "a"),
		fmt.Errorf("wrapped: %w", NewError(CodeRender, "b")),
	))
	got := Flatten(err)
	if len(got) != 2 || got[0].Message != "a" || got[1].Message != "b" {
		t.Errorf("Flatten() = %v", got)
	}
	if !Is(err, CodeRender) || Is(err, CodeCollision) {
		t.Error("Is() mismatch")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(CodeInternal, cause, "write traits/A.scala")
	if !errors.Is(err, cause) {
		t.Error("Wrap should preserve the cause")
	}
	if Wrap(CodeInternal, nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestExitCode(t *testing.T) {
	if CodeConfiguration.ExitCode() != 2 || CodeCollision.ExitCode() != 6 || ErrorCode("").ExitCode() != 0 {
		t.Error("unexpected exit codes")
	}
}
