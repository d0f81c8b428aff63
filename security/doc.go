// Package security turns file-based TLS settings into a *tls.Config for the
// S3, Azure Blob and NATS clients.
//
// A nil or zero TLS leaves the client on its default transport:
//
//	tls:
//	  ca_file: /etc/minio/ca.pem
//	  cert_file: /etc/catapult/client.pem
//	  key_file: /etc/catapult/client-key.pem
package security
