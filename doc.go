// Package users implements a small account service: user records with
// username/password credentials, stateless JWT session tokens, and an
// ownership guard that restricts mutations to the record owner.
package users
