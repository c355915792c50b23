// Package tele is the binary wire contract between the fleet head and
// alarm-panel firmware. Field numbers and wire types are frozen; both sides
// ship independently and old panels must keep decoding new heads.
//
// The codec is hand-maintained on protowire instead of protoc output so the
// repo builds without a generator step. Encoding follows proto3 rules:
// zero values are omitted, unknown fields are skipped on decode.
package tele
