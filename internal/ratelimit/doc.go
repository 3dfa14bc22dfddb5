// Package ratelimit spaces outbound calls by a fixed minimum interval.
package ratelimit
