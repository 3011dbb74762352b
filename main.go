// Project Structure Overview
/*
digital-original/
├── cmd/
│   └── server/
│       ├── main.go        (cobra root: serve, migrate, token)
│       ├── serve.go
│       ├── migrate.go
│       └── token.go
├── internal/
│   ├── app/               (process wiring, journal restore)
│   ├── config/
│   │   ├── config.go
│   │   └── database.go
│   ├── ledger/            (registry, collections, fees, vault)
│   ├── models/
│   │   ├── common.go
│   │   ├── collection.go
│   │   ├── asset.go
│   │   ├── transaction.go
│   │   └── audit.go
│   ├── database/
│   │   ├── connection.go
│   │   ├── journal.go
│   │   └── snapshot.go
│   ├── services/
│   │   ├── registry_service.go
│   │   ├── collection_service.go
│   │   ├── payment_service.go
│   │   ├── auth_service.go
│   │   ├── event_service.go
│   │   └── storage_service.go
│   ├── handlers/
│   │   ├── registry.go
│   │   ├── collection.go
│   │   ├── payment.go
│   │   ├── auth.go
│   │   └── errors.go
│   ├── middleware/
│   │   ├── auth.go
│   │   ├── cors.go
│   │   ├── i18n.go
│   │   ├── logging.go
│   │   └── rate_limit.go
│   ├── router/
│   │   └── router.go
│   ├── i18n/
│   │   ├── i18n.go
│   │   ├── keys.go
│   │   └── locales/
│   └── utils/
│       ├── amount.go
│       ├── jwt.go
│       ├── pagination.go
│       ├── response.go
│       └── validator.go
└── go.mod
*/

package main

// The binary lives in cmd/server; this file only documents the layout.
func main() {}
