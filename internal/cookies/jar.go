// Package cookies models outgoing cookie mutations as an explicit builder.
// The edge pipeline may decide late whether it continues, redirects, or blocks
// a request; a Jar accumulates every pending set/remove and applies them all
// onto whichever response is ultimately produced, so refreshed session cookies
// survive redirect construction. The pending operations also shadow the
// request's own cookies, so logic running later in the same pass observes the
// refreshed values.
package cookies

import "net/http"

type operation struct {
	name   string
	value  string
	remove bool
	opts   Options
}

// Jar accumulates cookie operations for one request pass.
type Jar struct {
	request  *http.Request
	defaults Options
	pending  []operation
}

// NewJar creates a Jar over the request's cookie state.
func NewJar(r *http.Request, opts ...Option) *Jar {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	defaults = applyOptions(defaults, opts)

	return &Jar{request: r, defaults: defaults}
}

// Get returns the current value of a cookie. Pending operations shadow the
// request's cookies; a pending removal reports the cookie as absent.
func (j *Jar) Get(name string) (string, bool) {
	for i := len(j.pending) - 1; i >= 0; i-- {
		if j.pending[i].name == name {
			if j.pending[i].remove {
				return "", false
			}
			return j.pending[i].value, true
		}
	}

	c, err := j.request.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set queues a cookie write. Per-call options override the jar defaults.
func (j *Jar) Set(name, value string, opts ...Option) {
	j.pending = append(j.pending, operation{
		name:  name,
		value: value,
		opts:  applyOptions(j.defaults, opts),
	})
}

// Remove queues a cookie deletion.
func (j *Jar) Remove(name string, opts ...Option) {
	options := applyOptions(j.defaults, opts)
	options.MaxAge = -1
	j.pending = append(j.pending, operation{
		name:   name,
		remove: true,
		opts:   options,
	})
}

// Dirty reports whether any operation is pending.
func (j *Jar) Dirty() bool {
	return len(j.pending) > 0
}

// Apply writes all pending operations onto the response. For each cookie name
// only the latest queued operation wins. Apply may be called on any response
// the pipeline ends up producing, pass-through or redirect alike.
func (j *Jar) Apply(w http.ResponseWriter) {
	applied := make(map[string]struct{}, len(j.pending))

	for i := len(j.pending) - 1; i >= 0; i-- {
		op := j.pending[i]
		if _, done := applied[op.name]; done {
			continue
		}
		applied[op.name] = struct{}{}

		cookie := &http.Cookie{
			Name:     op.name,
			Value:    op.value,
			Path:     op.opts.Path,
			Domain:   op.opts.Domain,
			MaxAge:   op.opts.MaxAge,
			Secure:   op.opts.Secure,
			HttpOnly: op.opts.HttpOnly,
			SameSite: op.opts.SameSite,
		}
		http.SetCookie(w, cookie)
	}
}
