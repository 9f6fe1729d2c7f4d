package postgres

import (
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

const policyColumns = `provider_kind, name, description, summary, read_only, rules, resource_version, uid::text, created_at`

const (
	selectPolicySQL = `
SELECT ` + policyColumns + `
FROM planguard.policies
WHERE provider_kind = $1 AND name = $2
`

	listPoliciesSQL = `
SELECT ` + policyColumns + `
FROM planguard.policies
WHERE ($1::text = '' OR provider_kind = $1::text)
ORDER BY provider_kind ASC, name ASC
`

	insertPolicySQL = `
INSERT INTO planguard.policies (provider_kind, name, description, summary, read_only, rules, uid)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::uuid)
RETURNING ` + policyColumns

	updatePolicySQL = `
UPDATE planguard.policies
SET description = $3,
    summary = $4,
    rules = $5::jsonb,
    resource_version = resource_version + 1,
    updated_at = now()
WHERE provider_kind = $1 AND name = $2 AND resource_version = $6
RETURNING ` + policyColumns

	deletePolicySQL = `
DELETE FROM planguard.policies
WHERE provider_kind = $1 AND name = $2 AND resource_version = $3
`

	currentVersionSQL = `
SELECT resource_version
FROM planguard.policies
WHERE provider_kind = $1 AND name = $2
`
)
