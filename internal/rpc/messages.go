package rpc

import (
	"github.com/dmitrijs2005/credvault/internal/models"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// store.proto message names.
const (
	nameMasterKey               protoreflect.Name = "MasterKey"
	nameEntry                   protoreflect.Name = "Entry"
	nameAccessLogEntry          protoreflect.Name = "AccessLogEntry"
	nameGetMasterKeyRequest     protoreflect.Name = "GetMasterKeyRequest"
	nameMasterKeyResponse       protoreflect.Name = "MasterKeyResponse"
	namePutMasterKeyRequest     protoreflect.Name = "PutMasterKeyRequest"
	namePutMasterKeyResponse    protoreflect.Name = "PutMasterKeyResponse"
	nameInsertEntryRequest      protoreflect.Name = "InsertEntryRequest"
	nameEntryResponse           protoreflect.Name = "EntryResponse"
	nameGetEntryRequest         protoreflect.Name = "GetEntryRequest"
	nameListEntriesRequest      protoreflect.Name = "ListEntriesRequest"
	nameListEntriesResponse     protoreflect.Name = "ListEntriesResponse"
	nameUpdateEntryRequest      protoreflect.Name = "UpdateEntryRequest"
	nameDeleteEntryRequest      protoreflect.Name = "DeleteEntryRequest"
	nameAppendAccessLogRequest  protoreflect.Name = "AppendAccessLogRequest"
	nameAppendAccessLogResponse protoreflect.Name = "AppendAccessLogResponse"
	nameListAccessLogRequest    protoreflect.Name = "ListAccessLogRequest"
	nameListAccessLogResponse   protoreflect.Name = "ListAccessLogResponse"
	namePingRequest             protoreflect.Name = "PingRequest"
	namePingResponse            protoreflect.Name = "PingResponse"
)

// Master key records are addressed by the caller's token principal; the
// server ignores any principal id a client puts in the record.

type GetMasterKeyRequest struct{}

func (*GetMasterKeyRequest) protoName() protoreflect.Name { return nameGetMasterKeyRequest }
func (*GetMasterKeyRequest) encode(protoreflect.Message)  {}
func (*GetMasterKeyRequest) decode(protoreflect.Message)  {}

type MasterKeyResponse struct {
	Record *models.MasterKeyRecord
}

func (*MasterKeyResponse) protoName() protoreflect.Name    { return nameMasterKeyResponse }
func (r *MasterKeyResponse) encode(m protoreflect.Message) { setRecord(m, r.Record) }
func (r *MasterKeyResponse) decode(m protoreflect.Message) { r.Record = getRecord(m) }

type PutMasterKeyRequest struct {
	Record *models.MasterKeyRecord
	// IfAbsent inserts only when the principal has no record yet.
	IfAbsent bool
}

func (*PutMasterKeyRequest) protoName() protoreflect.Name { return namePutMasterKeyRequest }

func (r *PutMasterKeyRequest) encode(m protoreflect.Message) {
	setRecord(m, r.Record)
	setBool(m, "if_absent", r.IfAbsent)
}

func (r *PutMasterKeyRequest) decode(m protoreflect.Message) {
	r.Record = getRecord(m)
	r.IfAbsent = getBool(m, "if_absent")
}

type PutMasterKeyResponse struct {
	Written bool
}

func (*PutMasterKeyResponse) protoName() protoreflect.Name    { return namePutMasterKeyResponse }
func (r *PutMasterKeyResponse) encode(m protoreflect.Message) { setBool(m, "written", r.Written) }
func (r *PutMasterKeyResponse) decode(m protoreflect.Message) { r.Written = getBool(m, "written") }

type InsertEntryRequest struct {
	Entry *models.CredentialEntry
}

func (*InsertEntryRequest) protoName() protoreflect.Name    { return nameInsertEntryRequest }
func (r *InsertEntryRequest) encode(m protoreflect.Message) { setEntry(m, r.Entry) }
func (r *InsertEntryRequest) decode(m protoreflect.Message) { r.Entry = getEntry(m) }

type EntryResponse struct {
	Entry *models.CredentialEntry
}

func (*EntryResponse) protoName() protoreflect.Name    { return nameEntryResponse }
func (r *EntryResponse) encode(m protoreflect.Message) { setEntry(m, r.Entry) }
func (r *EntryResponse) decode(m protoreflect.Message) { r.Entry = getEntry(m) }

type GetEntryRequest struct {
	ID string
}

func (*GetEntryRequest) protoName() protoreflect.Name    { return nameGetEntryRequest }
func (r *GetEntryRequest) encode(m protoreflect.Message) { setString(m, "id", r.ID) }
func (r *GetEntryRequest) decode(m protoreflect.Message) { r.ID = getString(m, "id") }

type ListEntriesRequest struct{}

func (*ListEntriesRequest) protoName() protoreflect.Name { return nameListEntriesRequest }
func (*ListEntriesRequest) encode(protoreflect.Message)  {}
func (*ListEntriesRequest) decode(protoreflect.Message)  {}

type ListEntriesResponse struct {
	Entries []*models.CredentialEntry
}

func (*ListEntriesResponse) protoName() protoreflect.Name { return nameListEntriesResponse }

func (r *ListEntriesResponse) encode(m protoreflect.Message) {
	for _, e := range r.Entries {
		appendNested(m, "entries", func(sub protoreflect.Message) { encodeEntry(sub, e) })
	}
}

func (r *ListEntriesResponse) decode(m protoreflect.Message) {
	eachNested(m, "entries", func(sub protoreflect.Message) {
		r.Entries = append(r.Entries, decodeEntry(sub))
	})
}

type UpdateEntryRequest struct {
	Entry *models.CredentialEntry
}

func (*UpdateEntryRequest) protoName() protoreflect.Name    { return nameUpdateEntryRequest }
func (r *UpdateEntryRequest) encode(m protoreflect.Message) { setEntry(m, r.Entry) }
func (r *UpdateEntryRequest) decode(m protoreflect.Message) { r.Entry = getEntry(m) }

type DeleteEntryRequest struct {
	ID string
}

func (*DeleteEntryRequest) protoName() protoreflect.Name    { return nameDeleteEntryRequest }
func (r *DeleteEntryRequest) encode(m protoreflect.Message) { setString(m, "id", r.ID) }
func (r *DeleteEntryRequest) decode(m protoreflect.Message) { r.ID = getString(m, "id") }

type AppendAccessLogRequest struct {
	Entry *models.AccessLogEntry
}

func (*AppendAccessLogRequest) protoName() protoreflect.Name { return nameAppendAccessLogRequest }

func (r *AppendAccessLogRequest) encode(m protoreflect.Message) {
	if r.Entry != nil {
		setNested(m, "entry", func(sub protoreflect.Message) { encodeAccessLogEntry(sub, r.Entry) })
	}
}

func (r *AppendAccessLogRequest) decode(m protoreflect.Message) {
	if sub, ok := getNested(m, "entry"); ok {
		r.Entry = decodeAccessLogEntry(sub)
	}
}

type AppendAccessLogResponse struct {
	ID int64
}

func (*AppendAccessLogResponse) protoName() protoreflect.Name    { return nameAppendAccessLogResponse }
func (r *AppendAccessLogResponse) encode(m protoreflect.Message) { setInt64(m, "id", r.ID) }
func (r *AppendAccessLogResponse) decode(m protoreflect.Message) { r.ID = getInt64(m, "id") }

type ListAccessLogRequest struct {
	EntryID string
}

func (*ListAccessLogRequest) protoName() protoreflect.Name    { return nameListAccessLogRequest }
func (r *ListAccessLogRequest) encode(m protoreflect.Message) { setString(m, "entry_id", r.EntryID) }
func (r *ListAccessLogRequest) decode(m protoreflect.Message) { r.EntryID = getString(m, "entry_id") }

type ListAccessLogResponse struct {
	Entries []*models.AccessLogEntry
}

func (*ListAccessLogResponse) protoName() protoreflect.Name { return nameListAccessLogResponse }

func (r *ListAccessLogResponse) encode(m protoreflect.Message) {
	for _, e := range r.Entries {
		appendNested(m, "entries", func(sub protoreflect.Message) { encodeAccessLogEntry(sub, e) })
	}
}

func (r *ListAccessLogResponse) decode(m protoreflect.Message) {
	eachNested(m, "entries", func(sub protoreflect.Message) {
		r.Entries = append(r.Entries, decodeAccessLogEntry(sub))
	})
}

type PingRequest struct{}

func (*PingRequest) protoName() protoreflect.Name { return namePingRequest }
func (*PingRequest) encode(protoreflect.Message)  {}
func (*PingRequest) decode(protoreflect.Message)  {}

type PingResponse struct {
	Status string
}

func (*PingResponse) protoName() protoreflect.Name    { return namePingResponse }
func (r *PingResponse) encode(m protoreflect.Message) { setString(m, "status", r.Status) }
func (r *PingResponse) decode(m protoreflect.Message) { r.Status = getString(m, "status") }
