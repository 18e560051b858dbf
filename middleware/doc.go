// Package middleware provides reusable turn middleware. ShowTyping keeps a
// typing indicator alive on the channel while the bot is still working on
// a message turn.
package middleware
