// Package classify turns search hits into a status using ordered keyword
// rules. The first matching rule wins.
package classify
