package core

// NextFunc continues the turn pipeline with the remaining middleware and,
// finally, the bot callback. A middleware that never calls next
// short-circuits the turn.
type NextFunc func() error

// Middleware observes or modifies one turn before handing control to the
// rest of the pipeline.
type Middleware interface {
	OnTurn(tc *TurnContext, next NextFunc) error
}

// MiddlewareFunc adapts a plain function to the Middleware interface.
type MiddlewareFunc func(tc *TurnContext, next NextFunc) error

// OnTurn implements Middleware.
func (f MiddlewareFunc) OnTurn(tc *TurnContext, next NextFunc) error {
	return f(tc, next)
}

// MiddlewareSet is an ordered collection of middleware run front to back on
// every turn. The zero value is usable.
type MiddlewareSet struct {
	middleware []Middleware
}

// NewMiddlewareSet builds a set from the given middleware, in order.
func NewMiddlewareSet(middleware ...Middleware) *MiddlewareSet {
	return &MiddlewareSet{middleware: middleware}
}

// Use appends middleware to the set. Order of registration defines
// execution order.
func (s *MiddlewareSet) Use(middleware ...Middleware) {
	s.middleware = append(s.middleware, middleware...)
}

// Run walks the set in registration order, each middleware receiving a next
// continuation, and invokes callback as the terminal step. A nil callback
// simply ends the chain.
func (s *MiddlewareSet) Run(tc *TurnContext, callback HandlerFunc) error {
	var run func(i int) error
	run = func(i int) error {
		if i == len(s.middleware) {
			if callback == nil {
				return nil
			}
			return callback(tc)
		}
		return s.middleware[i].OnTurn(tc, func() error { return run(i + 1) })
	}
	return run(0)
}
