// Package logging configures the zerolog global logger and hands out
// component loggers. Every package in the module logs through a logger
// obtained here so levels and output are controlled in one place.
package logging
