//go:build !enemyai_debug

package agent

const debugAsserts = false
