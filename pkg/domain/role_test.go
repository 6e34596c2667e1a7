package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "heirloom/pkg/domain-errors"
)

func TestRoleCapabilities(t *testing.T) {
	t.Run("only beneficiaries can ever receive files", func(t *testing.T) {
		assert.True(t, RoleBeneficiary.CanReceiveFiles())
		assert.False(t, RoleWitness.CanReceiveFiles())
		assert.False(t, RoleShared.CanReceiveFiles())
	})

	t.Run("unknown roles fail closed", func(t *testing.T) {
		assert.False(t, Role("executor").CanReceiveFiles())
		assert.False(t, Role("").CanReceiveFiles())
	})

	t.Run("every listed role has an explicit capability entry", func(t *testing.T) {
		for _, role := range Roles() {
			_, ok := roleFileAccess[role]
			assert.True(t, ok, "role %q missing from capability table", role)
		}
	})
}

func TestParseRole(t *testing.T) {
	t.Run("accepts each known role", func(t *testing.T) {
		for _, role := range Roles() {
			parsed, err := ParseRole(string(role))
			require.NoError(t, err)
			assert.Equal(t, role, parsed)
			assert.True(t, parsed.Valid())
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := ParseRole("owner")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = ParseRole("")
		require.Error(t, err)
	})
}
