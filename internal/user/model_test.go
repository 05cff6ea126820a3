package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	tests := []struct {
		role      Role
		valid     bool
		canReview bool
		isAdmin   bool
	}{
		{RoleStudent, true, false, false},
		{RoleTeacher, true, true, false},
		{RoleAdmin, true, true, true},
		{RoleSuperAdmin, true, true, true},
		{Role("janitor"), false, false, false},
		{Role(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.Valid())
			assert.Equal(t, tt.canReview, tt.role.CanReview())
			assert.Equal(t, tt.isAdmin, tt.role.IsAdmin())
		})
	}
}

func TestRoleOrdering(t *testing.T) {
	assert.Greater(t, RoleTeacher.Priority(), RoleStudent.Priority())
	assert.Greater(t, RoleAdmin.Priority(), RoleTeacher.Priority())
	assert.Greater(t, RoleSuperAdmin.Priority(), RoleAdmin.Priority())
	assert.Less(t, Role("unknown").Priority(), RoleStudent.Priority())
}
