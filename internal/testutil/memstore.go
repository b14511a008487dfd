// Package testutil provides shared test utilities for docstore.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/agenttrace/docstore/internal/pkg/database"
)

// MemDatabase is an in-memory database.DocumentDatabase.
//
// Filters support equality on top-level and dotted fields, equality against
// array members, and regular expressions. Query operators are rejected.
// Documents are returned in insertion order.
type MemDatabase struct {
	name string

	mu          sync.Mutex
	collections map[string]*memData
	failures    map[string]error
}

type memData struct {
	keys []string
	docs map[string]bson.Raw
}

// NewMemDatabase creates an empty in-memory database
func NewMemDatabase(name string) *MemDatabase {
	return &MemDatabase{
		name:        name,
		collections: make(map[string]*memData),
		failures:    make(map[string]error),
	}
}

// FailNext makes the next call of operation (one of the database.Op*
// constants) return err instead of running.
func (d *MemDatabase) FailNext(operation string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[operation] = err
}

// Count returns the number of documents stored in collection
func (d *MemDatabase) Count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if data, ok := d.collections[collection]; ok {
		return len(data.keys)
	}
	return 0
}

// Name returns the database name
func (d *MemDatabase) Name() string {
	return d.name
}

// CollectionExists reports whether name has been created or written to
func (d *MemDatabase) CollectionExists(ctx context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(ctx, database.OpCollectionExists); err != nil {
		return false, err
	}
	_, ok := d.collections[name]
	return ok, nil
}

// CreateCollection creates name if it does not exist
func (d *MemDatabase) CreateCollection(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin(ctx, database.OpCreateCollection); err != nil {
		return err
	}
	d.ensure(name)
	return nil
}

// Collection returns a handle to the named collection
func (d *MemDatabase) Collection(name string) database.DocumentCollection {
	return &MemCollection{db: d, name: name}
}

// begin checks ctx and consumes a pending failure for operation.
// Callers hold d.mu.
func (d *MemDatabase) begin(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := d.failures[operation]; ok {
		delete(d.failures, operation)
		return err
	}
	return nil
}

func (d *MemDatabase) ensure(name string) *memData {
	data, ok := d.collections[name]
	if !ok {
		data = &memData{docs: make(map[string]bson.Raw)}
		d.collections[name] = data
	}
	return data
}

// MemCollection is a collection inside a MemDatabase
type MemCollection struct {
	db   *MemDatabase
	name string
}

// Name returns the collection name
func (c *MemCollection) Name() string {
	return c.name
}

// FindOne decodes the first matching document into out
func (c *MemCollection) FindOne(ctx context.Context, filter any, out any) error {
	docs, err := c.match(ctx, database.OpFindOne, filter)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return database.ErrNoDocuments
	}
	return decodeRaw(docs[0], out)
}

// Find returns a cursor over the matching documents
func (c *MemCollection) Find(ctx context.Context, filter any, opts database.FindOptions) (database.Cursor, error) {
	docs, err := c.match(ctx, database.OpFind, filter)
	if err != nil {
		return nil, err
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(docs)) {
			docs = nil
		} else {
			docs = docs[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(docs)) {
		docs = docs[:opts.Limit]
	}
	return &memCursor{docs: docs, pos: -1}, nil
}

// Save replaces or inserts doc under id. A missing _id is set from id.
func (c *MemCollection) Save(ctx context.Context, id any, doc any) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.db.begin(ctx, database.OpSave); err != nil {
		return err
	}

	key, err := keyOf(id)
	if err != nil {
		return err
	}
	raw, err := withID(id, doc)
	if err != nil {
		return err
	}

	data := c.db.ensure(c.name)
	if _, ok := data.docs[key]; !ok {
		data.keys = append(data.keys, key)
	}
	data.docs[key] = raw
	return nil
}

// Remove deletes every matching document
func (c *MemCollection) Remove(ctx context.Context, filter any) (int64, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.db.begin(ctx, database.OpRemove); err != nil {
		return 0, err
	}

	data, ok := c.db.collections[c.name]
	if !ok {
		return 0, nil
	}

	var removed int64
	kept := data.keys[:0]
	for _, key := range data.keys {
		ok, err := matches(data.docs[key], filter)
		if err != nil {
			return removed, err
		}
		if ok {
			delete(data.docs, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	data.keys = kept
	return removed, nil
}

func (c *MemCollection) match(ctx context.Context, operation string, filter any) ([]bson.Raw, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if err := c.db.begin(ctx, operation); err != nil {
		return nil, err
	}

	data, ok := c.db.collections[c.name]
	if !ok {
		return nil, nil
	}

	var out []bson.Raw
	for _, key := range data.keys {
		ok, err := matches(data.docs[key], filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, data.docs[key])
		}
	}
	return out, nil
}

type memCursor struct {
	docs []bson.Raw
	pos  int
	err  error
}

func (c *memCursor) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	c.pos++
	return c.pos < len(c.docs)
}

func (c *memCursor) Decode(out any) error {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	return decodeRaw(c.docs[c.pos], out)
}

func (c *memCursor) Err() error { return c.err }

func (c *memCursor) Close(context.Context) error { return nil }

func decodeRaw(raw bson.Raw, out any) error {
	if r, ok := out.(*bson.Raw); ok {
		*r = append(bson.Raw(nil), raw...)
		return nil
	}
	return bson.Unmarshal(raw, out)
}

// keyOf encodes an _id value into a map key. Equal values of the same BSON
// type produce the same key.
func keyOf(id any) (string, error) {
	v, err := rawValue(id)
	if err != nil {
		return "", fmt.Errorf("encode _id: %w", err)
	}
	return string(append([]byte{byte(v.Type)}, v.Value...)), nil
}

func rawValue(v any) (bson.RawValue, error) {
	raw, err := bson.Marshal(bson.D{{Key: "v", Value: v}})
	if err != nil {
		return bson.RawValue{}, err
	}
	return bson.Raw(raw).LookupErr("v")
}

// withID encodes doc, prepending _id when the document has none
func withID(id any, doc any) (bson.Raw, error) {
	raw, err := toRaw(doc)
	if err != nil {
		return nil, err
	}
	if _, err := raw.LookupErr("_id"); err == nil {
		return raw, nil
	}

	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	d = append(bson.D{{Key: "_id", Value: id}}, d...)
	out, err := bson.Marshal(d)
	return out, err
}

func toRaw(doc any) (bson.Raw, error) {
	if r, ok := doc.(bson.Raw); ok {
		return r, nil
	}
	out, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

func matches(doc bson.Raw, filter any) (bool, error) {
	if filter == nil {
		return true, nil
	}
	f, err := toRaw(filter)
	if err != nil {
		return false, err
	}

	elems, err := f.Elements()
	if err != nil {
		return false, err
	}
	for _, e := range elems {
		key := e.Key()
		if strings.HasPrefix(key, "$") {
			return false, fmt.Errorf("memstore: operator %s is not supported", key)
		}
		want := e.Value()
		if isOperatorDoc(want) {
			return false, fmt.Errorf("memstore: operators on %s are not supported", key)
		}

		got, err := doc.LookupErr(strings.Split(key, ".")...)
		if err != nil {
			if want.Type == bsontype.Null {
				continue
			}
			return false, nil
		}
		ok, err := valueMatches(got, want)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func isOperatorDoc(v bson.RawValue) bool {
	if v.Type != bsontype.EmbeddedDocument {
		return false
	}
	elems, err := v.Document().Elements()
	if err != nil || len(elems) == 0 {
		return false
	}
	return strings.HasPrefix(elems[0].Key(), "$")
}

func valueMatches(got, want bson.RawValue) (bool, error) {
	if want.Type == bsontype.Regex {
		return regexMatches(got, want)
	}
	if equalValues(got, want) {
		return true, nil
	}
	if got.Type == bsontype.Array && want.Type != bsontype.Array {
		values, err := got.Array().Values()
		if err != nil {
			return false, err
		}
		for _, v := range values {
			if equalValues(v, want) {
				return true, nil
			}
		}
	}
	return false, nil
}

func equalValues(a, b bson.RawValue) bool {
	if af, ok := number(a); ok {
		bf, ok := number(b)
		return ok && af == bf
	}
	return a.Type == b.Type && bytes.Equal(a.Value, b.Value)
}

func number(v bson.RawValue) (float64, bool) {
	switch v.Type {
	case bsontype.Int32:
		return float64(v.Int32()), true
	case bsontype.Int64:
		return float64(v.Int64()), true
	case bsontype.Double:
		return v.Double(), true
	}
	return 0, false
}

func regexMatches(got, want bson.RawValue) (bool, error) {
	if got.Type != bsontype.String {
		return false, nil
	}
	pattern, options := want.Regex()
	var flags string
	for _, o := range options {
		if strings.ContainsRune("ims", o) {
			flags += string(o)
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("memstore: %w", err)
	}
	return re.MatchString(got.StringValue()), nil
}
