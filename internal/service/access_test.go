package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository/repotest"
	apperrors "github.com/spec-kit/campus-helpdesk/pkg/util"
)

func TestAccessGuard(t *testing.T) {
	store := repotest.NewStore()
	etc := store.AddOffice("ETC", "")
	guidance := store.AddOffice("Guidance Office", "")
	etcStaff := store.AddStaff("ETC Desk", "etc@school.edu.ph", etc)
	counsellor := store.AddStaff("Counsellor", "guidance@school.edu.ph", guidance)
	owner := store.AddUser("Ana", "ana@school.edu.ph", false)
	admin := store.AddUser("Admin", "admin@school.edu.ph", true)

	assigned := &domain.Ticket{ID: 1, CreatedBy: owner.ID, AssignedTo: &etcStaff.ID}
	unassigned := &domain.Ticket{ID: 2, CreatedBy: owner.ID}

	cases := []struct {
		name   string
		actor  *domain.User
		ticket *domain.Ticket
		path   AccessPath
		allow  bool
	}{
		{"owner on owner path", owner, assigned, AccessPathOwner, true},
		{"owner on staff path", owner, assigned, AccessPathStaff, false},
		{"staff of assignee office", etcStaff, assigned, AccessPathStaff, true},
		{"staff on owner path", etcStaff, assigned, AccessPathOwner, false},
		{"staff of another office", counsellor, assigned, AccessPathStaff, false},
		{"staff on unassigned ticket", etcStaff, unassigned, AccessPathStaff, false},
		{"superuser on unassigned ticket", admin, unassigned, AccessPathStaff, true},
		{"superuser on owner path", admin, assigned, AccessPathOwner, false},
		{"anonymous", nil, assigned, AccessPathStaff, false},
		{"unknown path", owner, assigned, AccessPath("other"), false},
	}

	var guard AccessGuard
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Authorize(context.Background(), store.Directory(), tc.actor, tc.ticket, tc.path)
			if tc.allow {
				require.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
		})
	}
}
