//go:build enemyai_debug

package agent

// debugAsserts turns contract violations into panics.
const debugAsserts = true
