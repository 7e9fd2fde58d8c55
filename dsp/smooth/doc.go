// Package smooth provides one-pole parameter smoothing.
//
// A one-pole smoother moves a tracked value a fixed fraction of the remaining
// distance towards its target on every tick:
//
//	current' = current + coef*(target - current)
//
// A coefficient of 1 snaps immediately; small coefficients such as 0.0002
// glide over tens of thousands of samples, which keeps delay-time changes
// free of clicks.
package smooth
