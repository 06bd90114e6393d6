// Package session runs sessions as actors.
//
// Each session is a goroutine that exclusively owns its backend and consumes
// a bounded Mailbox. Callers talk to a session only by posting commands;
// every command carries its own single-use reply channel. The Manager
// creates sessions through an initialization handshake, keeps the Registry
// of live sessions, routes commands, and fans out stops on shutdown.
package session
