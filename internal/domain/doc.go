// Package domain contains the core business entities of the HocaLingo
// vocabulary service: users, vocabulary cards, and the per-card study
// progress records driven by the spaced repetition engine.
//
// Domain objects carry their own validation but no I/O. All scheduling
// logic lives in the domain/srs subpackage; persistence lives behind the
// store interfaces.
package domain
