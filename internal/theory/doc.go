// Package theory is the music-theory core: note parsing, tuning resolution
// and minor-scale fretboard generation for 4 to 8 string instruments.
//
// Everything here is pure. Functions take their inputs by value, return
// fresh results and share only read-only reference tables, so they may be
// called from any goroutine.
package theory
