// Package oauth provides the pieces of the user sign-in flow the turn
// engine itself needs: recognizing OAuth cards on outbound activities,
// recognizing token-service responses on inbound ones, and the background
// token-exchange poller that turns a completed sign-in into a fresh
// tokens/response turn. Card construction and credential mechanics stay
// with the hosting application.
package oauth
