package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestOpError_MatchesStorageCategory(t *testing.T) {
	err := Wrap(OpLoad, "patients could not be loaded", sql.ErrConnDone)

	if !errors.Is(err, ErrStorage) {
		t.Error("Expected error to match ErrStorage")
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Error("Expected error to unwrap to the driver error")
	}

	wrapped := fmt.Errorf("failed to list patients: %w", err)
	var opErr *OpError
	if !errors.As(wrapped, &opErr) {
		t.Fatal("Expected errors.As to find *OpError")
	}
	if opErr.Op != OpLoad {
		t.Errorf("Expected op load, got %s", opErr.Op)
	}
}

func TestOpError_Message(t *testing.T) {
	err := Wrap(OpDelete, "patient could not be deleted", errors.New("connection reset"))
	expected := "patient could not be deleted: connection reset"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	bare := Wrap(OpCreate, "patient could not be created", nil)
	if bare.Error() != "patient could not be created" {
		t.Errorf("Unexpected message %q", bare.Error())
	}
}
