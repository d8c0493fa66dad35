// Package core contains the contract verification domain contracts: message
// envelopes for messaging verifiers and the fixture lifecycle guard that
// decides when a shared mock-server test context must be rebuilt. Host test
// runners, transports and caches depend on this package; core must not depend
// on any of them.
package core
