package storefront

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

const (
	operationName    = "cart.add"
	subjectName      = "token"
	codeName         = "save"
	baseErrorMessage = "base error"
	loginMessage     = "Please login to add to cart"
)

func TestErrorMessageIsVerbatim(test *testing.T) {
	test.Parallel()
	failure := NewError(KindAuth, operationName, 0, loginMessage, nil)
	if failure.Error() != loginMessage {
		test.Fatalf("expected %q, got %q", loginMessage, failure.Error())
	}
	if failure.Operation() != operationName || failure.Kind() != KindAuth || failure.Status() != 0 {
		test.Fatalf("unexpected metadata: %+v", failure)
	}
}

func TestErrorMatchesKindSentinel(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{kind: KindValidation, sentinel: ErrValidation},
		{kind: KindAuth, sentinel: ErrAuth},
		{kind: KindNetwork, sentinel: ErrNetwork},
		{kind: KindServer, sentinel: ErrServer},
	}
	for _, testCase := range testCases {
		wrapped := fmt.Errorf("outer: %w", NewError(testCase.kind, operationName, 400, "boom", nil))
		if !errors.Is(wrapped, testCase.sentinel) {
			test.Fatalf("kind %s: expected errors.Is to match its sentinel", testCase.kind)
		}
		kind, ok := KindOf(wrapped)
		if !ok || kind != testCase.kind {
			test.Fatalf("expected kind %s, got %s (ok=%v)", testCase.kind, kind, ok)
		}
	}
}

func TestErrorUnwrapsCause(test *testing.T) {
	test.Parallel()
	failure := NewError(KindNetwork, operationName, 0, "", context.Canceled)
	if !errors.Is(failure, context.Canceled) {
		test.Fatalf("expected cause to be reachable")
	}
	if failure.Error() != context.Canceled.Error() {
		test.Fatalf("expected cause message fallback, got %q", failure.Error())
	}
	if errors.Is(failure, ErrAuth) {
		test.Fatalf("network failure must not match ErrAuth")
	}
}

func TestErrorDefaultMessage(test *testing.T) {
	test.Parallel()
	if NewError(KindServer, operationName, 500, "", nil).Error() != defaultFailureMessage {
		test.Fatalf("expected default message")
	}
}

func TestKindOfPlainError(test *testing.T) {
	test.Parallel()
	if _, ok := KindOf(errors.New(baseErrorMessage)); ok {
		test.Fatalf("expected untagged error")
	}
}

func TestOperationErrorFormatting(test *testing.T) {
	test.Parallel()
	baseError := errors.New(baseErrorMessage)
	wrappedError := WrapError(operationName, subjectName, codeName, baseError)
	if wrappedError == nil {
		test.Fatalf("expected wrapped error")
	}
	expected := operationName + "." + subjectName + "." + codeName + ": " + baseErrorMessage
	if wrappedError.Error() != expected {
		test.Fatalf("expected %q, got %q", expected, wrappedError.Error())
	}
	if !errors.Is(wrappedError, baseError) {
		test.Fatalf("expected base error in chain")
	}
}

func TestWrapErrorNil(test *testing.T) {
	test.Parallel()
	if WrapError(operationName, subjectName, codeName, nil) != nil {
		test.Fatalf("expected nil wrapped error")
	}
}
