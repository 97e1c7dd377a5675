package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-helpdesk/internal/config"
	"github.com/spec-kit/campus-helpdesk/internal/domain"
	"github.com/spec-kit/campus-helpdesk/internal/repository/repotest"
)

func TestRoutingPicksEarliestEnrolledStaff(t *testing.T) {
	store := repotest.NewStore()
	etc := store.AddOffice(config.OfficeETC, "")
	first := store.AddStaff("Zed", "zed@school.edu.ph", etc)
	store.AddStaff("Amy", "amy@school.edu.ph", etc)

	engine := NewRoutingEngine(config.DefaultRoutingConfig())
	ticket := &domain.Ticket{Category: domain.CategoryTechnical}
	decision, err := engine.Assign(context.Background(), store.Directory(), ticket)
	require.NoError(t, err)
	require.NotNil(t, decision.Assignee)
	assert.Equal(t, first.ID, decision.Assignee.ID)
	assert.Equal(t, etc.ID, decision.Office.ID)
	assert.Equal(t, first.ID, *ticket.AssignedTo)
}

func TestRoutingTriesOfficesInOrder(t *testing.T) {
	store := repotest.NewStore()
	store.AddOffice(config.OfficePrincipal, "")
	services := store.AddOffice(config.OfficeStudentServices, "")
	helper := store.AddStaff("OSS Desk", "oss@school.edu.ph", services)

	engine := NewRoutingEngine(config.DefaultRoutingConfig())
	ticket := &domain.Ticket{Category: domain.CategoryLostFound}
	decision, err := engine.Assign(context.Background(), store.Directory(), ticket)
	require.NoError(t, err)
	require.NotNil(t, decision.Assignee)
	assert.Equal(t, helper.ID, decision.Assignee.ID)
	assert.Equal(t, services.ID, decision.Office.ID)
}

func TestRoutingWithoutOfficeOrStaff(t *testing.T) {
	engine := NewRoutingEngine(config.DefaultRoutingConfig())

	t.Run("no office", func(t *testing.T) {
		store := repotest.NewStore()
		assigned := "stale"
		ticket := &domain.Ticket{Category: domain.CategoryAcademic, AssignedTo: &assigned}
		decision, err := engine.Assign(context.Background(), store.Directory(), ticket)
		require.NoError(t, err)
		assert.Nil(t, decision.Office)
		assert.Nil(t, decision.Assignee)
		assert.Nil(t, ticket.AssignedTo)
	})

	t.Run("office without staff", func(t *testing.T) {
		store := repotest.NewStore()
		registrar := store.AddOffice(config.OfficeRegistrar, "")
		ticket := &domain.Ticket{Category: domain.CategoryAcademic}
		decision, err := engine.Assign(context.Background(), store.Directory(), ticket)
		require.NoError(t, err)
		require.NotNil(t, decision.Office)
		assert.Equal(t, registrar.ID, decision.Office.ID)
		assert.Nil(t, decision.Assignee)
	})
}

func TestRoutingCustomTable(t *testing.T) {
	engine := NewRoutingEngine(config.RoutingConfig{Routes: map[string][]string{
		"technical": {"Help Desk"},
	}})
	assert.Equal(t, []string{"Help Desk"}, engine.OfficesFor(domain.CategoryTechnical))
	assert.Empty(t, engine.OfficesFor(domain.CategoryWelfare))

	store := repotest.NewStore()
	desk := store.AddOffice("Help Desk", "")
	ok, err := engine.CanHandle(context.Background(), store.Directory(), domain.CategoryTechnical, desk.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = engine.CanHandle(context.Background(), store.Directory(), domain.CategoryWelfare, desk.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
