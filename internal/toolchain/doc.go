// Package toolchain shells out to the library's build system and test
// scripts. It exposes a Runner seam so the driver can be exercised without
// spawning real processes.
package toolchain
