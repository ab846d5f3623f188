// Package decay provides the closed-form kinematics of friction coasting.
//
// Drag from friction is taken to be proportional to velocity, so speed decays
// exponentially: after t seconds an object launched at v0 moves at
//
//	v(t) = v0 * r^t
//
// where r is the decay ratio, the fraction of speed retained per second. Below
// a minimum speed vmin friction spikes and the object stops abruptly, so
// [Environment.Velocity] reports zero once v(t) drops under vmin.
//
// Integrating v over [0, t] gives the distance travelled:
//
//	d(t) = v0 * (r^t - 1) / ln(r)
//
// and the stopping time and its inverse follow in closed form. Every formula
// is evaluated against ln(r) and ln(vmin) computed once per [Environment].
//
// # Domain errors
//
// Out-of-domain queries do not panic and do not return errors. They return
// NaN, which callers check with [IsDomainError]:
//
//	env := decay.MustNew(0.95, 0.1)
//	t := env.TimeForDistance(10, 1e6)
//	if decay.IsDomainError(t) {
//	    // the coast never travels that far
//	}
package decay
