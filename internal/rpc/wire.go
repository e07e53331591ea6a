package rpc

import (
	"time"

	"github.com/dmitrijs2005/credvault/internal/models"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// wireMessage is implemented by the request and response types. Each copies
// itself to and from its store.proto message.
type wireMessage interface {
	protoName() protoreflect.Name
	encode(m protoreflect.Message)
	decode(m protoreflect.Message)
}

// toWire converts v to its store.proto message.
func toWire(v wireMessage) proto.Message {
	m := newWire(v.protoName())
	v.encode(m)
	return m
}

func field(m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	return m.Descriptor().Fields().ByName(name)
}

func setString(m protoreflect.Message, name protoreflect.Name, s string) {
	m.Set(field(m, name), protoreflect.ValueOfString(s))
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(field(m, name)).String()
}

func setBytes(m protoreflect.Message, name protoreflect.Name, b []byte) {
	m.Set(field(m, name), protoreflect.ValueOfBytes(b))
}

func getBytes(m protoreflect.Message, name protoreflect.Name) []byte {
	b := m.Get(field(m, name)).Bytes()
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

func setBool(m protoreflect.Message, name protoreflect.Name, v bool) {
	m.Set(field(m, name), protoreflect.ValueOfBool(v))
}

func getBool(m protoreflect.Message, name protoreflect.Name) bool {
	return m.Get(field(m, name)).Bool()
}

func setInt64(m protoreflect.Message, name protoreflect.Name, v int64) {
	m.Set(field(m, name), protoreflect.ValueOfInt64(v))
}

func getInt64(m protoreflect.Message, name protoreflect.Name) int64 {
	return m.Get(field(m, name)).Int()
}

// setProto stores a well-known message in a message field.
func setProto(m protoreflect.Message, name protoreflect.Name, v proto.Message) {
	fd := field(m, name)
	sub := m.NewField(fd).Message()
	proto.Merge(sub.Interface(), v)
	m.Set(fd, protoreflect.ValueOfMessage(sub))
}

// getProto copies a set message field into dst and reports whether it was set.
func getProto(m protoreflect.Message, name protoreflect.Name, dst proto.Message) bool {
	fd := field(m, name)
	if !m.Has(fd) {
		return false
	}
	proto.Merge(dst, m.Get(fd).Message().Interface())
	return true
}

func setTime(m protoreflect.Message, name protoreflect.Name, t time.Time) {
	if !t.IsZero() {
		setProto(m, name, timestamppb.New(t))
	}
}

func getTime(m protoreflect.Message, name protoreflect.Name) time.Time {
	ts := new(timestamppb.Timestamp)
	if !getProto(m, name, ts) {
		return time.Time{}
	}
	return ts.AsTime()
}

func setTimePtr(m protoreflect.Message, name protoreflect.Name, t *time.Time) {
	if t != nil {
		setTime(m, name, *t)
	}
}

func getTimePtr(m protoreflect.Message, name protoreflect.Name) *time.Time {
	t := getTime(m, name)
	if t.IsZero() {
		return nil
	}
	return &t
}

func setStringPtr(m protoreflect.Message, name protoreflect.Name, s *string) {
	if s != nil {
		setProto(m, name, wrapperspb.String(*s))
	}
}

func getStringPtr(m protoreflect.Message, name protoreflect.Name) *string {
	v := new(wrapperspb.StringValue)
	if !getProto(m, name, v) {
		return nil
	}
	s := v.GetValue()
	return &s
}

// Optional bytes keep nil apart from empty.
func setOptionalBytes(m protoreflect.Message, name protoreflect.Name, b []byte) {
	if b != nil {
		setProto(m, name, wrapperspb.Bytes(b))
	}
}

func getOptionalBytes(m protoreflect.Message, name protoreflect.Name) []byte {
	v := new(wrapperspb.BytesValue)
	if !getProto(m, name, v) {
		return nil
	}
	return append([]byte{}, v.GetValue()...)
}

// setNested fills a sub-message of a store.proto type.
func setNested(m protoreflect.Message, name protoreflect.Name, fill func(protoreflect.Message)) {
	fd := field(m, name)
	sub := m.NewField(fd).Message()
	fill(sub)
	m.Set(fd, protoreflect.ValueOfMessage(sub))
}

func getNested(m protoreflect.Message, name protoreflect.Name) (protoreflect.Message, bool) {
	fd := field(m, name)
	if !m.Has(fd) {
		return nil, false
	}
	return m.Get(fd).Message(), true
}

func appendNested(m protoreflect.Message, name protoreflect.Name, fill func(protoreflect.Message)) {
	list := m.Mutable(field(m, name)).List()
	el := list.NewElement()
	fill(el.Message())
	list.Append(el)
}

func eachNested(m protoreflect.Message, name protoreflect.Name, fn func(protoreflect.Message)) {
	list := m.Get(field(m, name)).List()
	for i := 0; i < list.Len(); i++ {
		fn(list.Get(i).Message())
	}
}

func encodeMasterKey(m protoreflect.Message, r *models.MasterKeyRecord) {
	setString(m, "principal_id", r.PrincipalID)
	setBytes(m, "verifier", r.Verifier)
	setBytes(m, "salt", r.Salt)
	setString(m, "kdf_params", r.KDFParams)
	setTime(m, "created_at", r.CreatedAt)
	setTime(m, "updated_at", r.UpdatedAt)
}

func decodeMasterKey(m protoreflect.Message) *models.MasterKeyRecord {
	return &models.MasterKeyRecord{
		PrincipalID: getString(m, "principal_id"),
		Verifier:    getBytes(m, "verifier"),
		Salt:        getBytes(m, "salt"),
		KDFParams:   getString(m, "kdf_params"),
		CreatedAt:   getTime(m, "created_at"),
		UpdatedAt:   getTime(m, "updated_at"),
	}
}

func encodeEntry(m protoreflect.Message, e *models.CredentialEntry) {
	setString(m, "id", e.ID)
	setString(m, "kind", string(e.Kind))
	setString(m, "category", e.Category)
	setString(m, "name", e.Name)
	setBytes(m, "ciphertext", e.Ciphertext)
	setBytes(m, "nonce", e.Nonce)
	setOptionalBytes(m, "legacy_username", e.LegacyUsername)
	setOptionalBytes(m, "legacy_notes", e.LegacyNotes)
	setStringPtr(m, "url", e.URL)
	setStringPtr(m, "property_id", e.PropertyID)
	setString(m, "created_by", e.CreatedBy)
	setString(m, "updated_by", e.UpdatedBy)
	setTime(m, "created_at", e.CreatedAt)
	setTime(m, "updated_at", e.UpdatedAt)
	setTimePtr(m, "rotated_at", e.RotatedAt)
}

func decodeEntry(m protoreflect.Message) *models.CredentialEntry {
	return &models.CredentialEntry{
		ID:             getString(m, "id"),
		Kind:           models.EntryKind(getString(m, "kind")),
		Category:       getString(m, "category"),
		Name:           getString(m, "name"),
		Ciphertext:     getBytes(m, "ciphertext"),
		Nonce:          getBytes(m, "nonce"),
		LegacyUsername: getOptionalBytes(m, "legacy_username"),
		LegacyNotes:    getOptionalBytes(m, "legacy_notes"),
		URL:            getStringPtr(m, "url"),
		PropertyID:     getStringPtr(m, "property_id"),
		CreatedBy:      getString(m, "created_by"),
		UpdatedBy:      getString(m, "updated_by"),
		CreatedAt:      getTime(m, "created_at"),
		UpdatedAt:      getTime(m, "updated_at"),
		RotatedAt:      getTimePtr(m, "rotated_at"),
	}
}

func encodeAccessLogEntry(m protoreflect.Message, e *models.AccessLogEntry) {
	setInt64(m, "id", e.ID)
	setString(m, "entry_id", e.EntryID)
	setString(m, "principal_id", e.PrincipalID)
	setString(m, "action", string(e.Action))
	setString(m, "entry_name", e.EntryName)
	setTime(m, "created_at", e.CreatedAt)
}

func decodeAccessLogEntry(m protoreflect.Message) *models.AccessLogEntry {
	return &models.AccessLogEntry{
		ID:          getInt64(m, "id"),
		EntryID:     getString(m, "entry_id"),
		PrincipalID: getString(m, "principal_id"),
		Action:      models.AccessAction(getString(m, "action")),
		EntryName:   getString(m, "entry_name"),
		CreatedAt:   getTime(m, "created_at"),
	}
}

func setEntry(m protoreflect.Message, e *models.CredentialEntry) {
	if e != nil {
		setNested(m, "entry", func(sub protoreflect.Message) { encodeEntry(sub, e) })
	}
}

func getEntry(m protoreflect.Message) *models.CredentialEntry {
	sub, ok := getNested(m, "entry")
	if !ok {
		return nil
	}
	return decodeEntry(sub)
}

func setRecord(m protoreflect.Message, r *models.MasterKeyRecord) {
	if r != nil {
		setNested(m, "record", func(sub protoreflect.Message) { encodeMasterKey(sub, r) })
	}
}

func getRecord(m protoreflect.Message) *models.MasterKeyRecord {
	sub, ok := getNested(m, "record")
	if !ok {
		return nil
	}
	return decodeMasterKey(sub)
}
