package isolation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CREATE POLICY has no IF NOT EXISTS, so the policy script must drop before
// it creates to stay idempotent under concurrent invocation.
func TestPolicyStatementsAreIdempotent(t *testing.T) {
	stmts := policyStatements("expenses")
	require.Len(t, stmts, 3)

	assert.Equal(t, `ALTER TABLE "public"."expenses" ENABLE ROW LEVEL SECURITY`, stmts[0])
	assert.Equal(t, `DROP POLICY IF EXISTS "worker_isolation" ON "public"."expenses"`, stmts[1])
	assert.True(t, strings.HasPrefix(stmts[2], `CREATE POLICY "worker_isolation" ON "public"."expenses"`))
	assert.Contains(t, stmts[2], `current_setting('app.tenant_label', true)`)
}
