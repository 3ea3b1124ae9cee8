// Package cache holds the Redis backed and in-process lock backends used to
// keep a plan from being recalculated twice at the same time.
package cache
