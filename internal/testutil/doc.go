// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing schema objects (activities,
// conversation references) and capturing outbound traffic. These helpers are
// intentionally minimal and avoid adding third-party dependencies. They are
// not intended for production usage.
package testutil
