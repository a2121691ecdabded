package postgres

import (
	"strconv"
	"strings"
	"testing"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/baharkarakas/atm-backend/internal/repository"
)

func TestBuildUserListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    repository.UserFilter
		wantWhere bool
		wantArgs  []any
	}{
		{
			name:     "no filter uses default page",
			filter:   repository.UserFilter{},
			wantArgs: []any{repository.DefaultListLimit, 0},
		},
		{
			name:      "name filter is a substring pattern",
			filter:    repository.UserFilter{NameContains: "ali", Limit: 10, Offset: 5},
			wantWhere: true,
			wantArgs:  []any{"%ali%", 10, 5},
		},
		{
			name:      "like metacharacters are escaped",
			filter:    repository.UserFilter{NameContains: "50%_x"},
			wantWhere: true,
			wantArgs:  []any{`%50\%\_x%`, repository.DefaultListLimit, 0},
		},
		{
			name:     "blank filter is ignored",
			filter:   repository.UserFilter{NameContains: "   ", Limit: 100000},
			wantArgs: []any{repository.MaxListLimit, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := buildUserListQuery(tt.filter)
			if got := strings.Contains(q, "ILIKE"); got != tt.wantWhere {
				t.Fatalf("ILIKE present=%t want %t: %s", got, tt.wantWhere, q)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args=%v want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Fatalf("args[%d]=%v want %v", i, args[i], tt.wantArgs[i])
				}
			}
			if !strings.HasSuffix(q, "ORDER BY id LIMIT $"+strconv.Itoa(len(args)-1)+" OFFSET $"+strconv.Itoa(len(args))) {
				t.Fatalf("unexpected tail: %s", q)
			}
		})
	}
}

func TestBuildTransactionListQuery(t *testing.T) {
	q, args := buildTransactionListQuery(repository.TransactionFilter{Type: models.TxnWithdraw, Limit: 3})
	if !strings.Contains(q, "WHERE type=$1") {
		t.Fatalf("missing type filter: %s", q)
	}
	if !strings.Contains(q, "ORDER BY date DESC, id DESC") {
		t.Fatalf("transactions must be newest first: %s", q)
	}
	if len(args) != 3 || args[0] != "Withdraw" || args[1] != 3 || args[2] != 0 {
		t.Fatalf("args=%v", args)
	}

	q, args = buildTransactionListQuery(repository.TransactionFilter{})
	if strings.Contains(q, "WHERE") {
		t.Fatalf("unexpected filter: %s", q)
	}
	if len(args) != 2 {
		t.Fatalf("args=%v", args)
	}
}
