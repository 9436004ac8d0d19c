// Package storage provides persistence of classification results in sql databases.
// Tables are built on top of engine.SQL and work with sqlite and postgres, each struct
// keeps the business logic for its table.
package storage
