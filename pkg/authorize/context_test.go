package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medchart/pkg/reqctx"
)

type testClaims struct {
	userID uuid.UUID
}

func (c testClaims) GetUserID() uuid.UUID { return c.userID }
func (c testClaims) GetRole() string      { return "nurse" }

func TestSubjectFromContext(t *testing.T) {
	validUUID := uuid.New()

	tests := []struct {
		name        string
		ctx         context.Context
		wantSubject GroupSubject
		wantErr     bool
	}{
		{
			name:        "valid claims",
			ctx:         reqctx.WithClaims(context.Background(), testClaims{userID: validUUID}),
			wantSubject: GroupSubject(validUUID.String()),
		},
		{
			name:    "no claims in context",
			ctx:     context.Background(),
			wantErr: true,
		},
		{
			name:    "nil uuid in claims",
			ctx:     reqctx.WithClaims(context.Background(), testClaims{userID: uuid.Nil}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := SubjectFromContext(tt.ctx)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if subject != tt.wantSubject {
				t.Errorf("SubjectFromContext() = %q, want %q", subject, tt.wantSubject)
			}
		})
	}
}
