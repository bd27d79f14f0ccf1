// Package restcrud exposes database entities over REST with little code.
//
// An entity embeds entity.Model and is registered with the database package:
//
//	type Book struct {
//		bun.BaseModel `bun:"table:books"`
//		entity.Model
//		Title string `bun:"title,notnull" json:"title" binding:"required"`
//	}
//
//	database.RegisterModel((*Book)(nil), 0)
//
// After database.InitDB, Mount serves create, list, get, range, count,
// update and delete routes for it:
//
//	restcrud.Mount[Book](engine, "/books")
//
// The repository and resource packages can also be used directly when the
// global database handle is not wanted.
package restcrud
