// Package testsupport builds isolated configs and CSV fixtures for tests.
package testsupport
