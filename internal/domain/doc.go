// Package domain contains the entity contracts and shared types for docstore.
//
// This package defines:
//   - Entity, the identifier capability every stored type satisfies
//   - Optional capabilities (IDSetter, Keyed, BeforeSaver, AfterSaver)
//   - Document, a schemaless entity for raw passthrough use
//   - SaveResult, returned by raw document saves
//
// # Identifiers
//
// Entities map their identifier to the "_id" field:
//
//	type User struct {
//	    ID   string `bson:"_id" json:"id"`
//	    Name string `bson:"name" json:"name"`
//	}
//
//	func (u User) GetID() string { return u.ID }
//	func (u *User) SetID(id string) { u.ID = id }
//
// Entity is checked at compile time by the repository type parameter. The
// other interfaces are discovered at runtime and are all optional.
package domain
