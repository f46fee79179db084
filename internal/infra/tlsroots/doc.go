// Package tlsroots loads trust roots and serving certificates for the
// calcmesh TLS listeners and clients.
//
// Pool collects CA certificates for client side verification, either
// from PEM files or on top of the system roots. CertReloader keeps a
// server key pair current by watching its files with fsnotify, so a
// renewed certificate takes effect without restarting the server.
package tlsroots
