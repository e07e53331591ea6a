package rpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	protoPackage = "credvault.store.v1"
	protoPath    = "credvault/store/v1/store.proto"
)

// Well-known dependencies of store.proto. Referencing the Go packages
// registers their files with protoregistry.GlobalFiles.
var wellKnown = []protoreflect.FileDescriptor{
	timestamppb.File_google_protobuf_timestamp_proto,
	wrapperspb.File_google_protobuf_wrappers_proto,
	emptypb.File_google_protobuf_empty_proto,
}

const (
	tString    = descriptorpb.FieldDescriptorProto_TYPE_STRING
	tBytes     = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	tBool      = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	tInt64     = descriptorpb.FieldDescriptorProto_TYPE_INT64
	tMessage   = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	lOptional  = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	lRepeated  = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	timestamp  = ".google.protobuf.Timestamp"
	stringWrap = ".google.protobuf.StringValue"
	bytesWrap  = ".google.protobuf.BytesValue"
	empty      = ".google.protobuf.Empty"
)

func scalar(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  lOptional.Enum(),
		Type:   typ.Enum(),
	}
}

func msg(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, tMessage)
	f.TypeName = proto.String(typeName)
	return f
}

func repeated(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := msg(name, num, typeName)
	f.Label = lRepeated.Enum()
	return f
}

func local(name protoreflect.Name) string {
	return "." + protoPackage + "." + string(name)
}

func message(name protoreflect.Name, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(string(name)), Field: fields}
}

func rpcMethod(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(in),
		OutputType: proto.String(out),
	}
}

// storeFileProto is store.proto for the StoreService API.
func storeFileProto() *descriptorpb.FileDescriptorProto {
	deps := make([]string, 0, len(wellKnown))
	for _, f := range wellKnown {
		deps = append(deps, f.Path())
	}

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoPath),
		Package:    proto.String(protoPackage),
		Syntax:     proto.String("proto3"),
		Dependency: deps,
		MessageType: []*descriptorpb.DescriptorProto{
			message(nameMasterKey,
				scalar("principal_id", 1, tString),
				scalar("verifier", 2, tBytes),
				scalar("salt", 3, tBytes),
				scalar("kdf_params", 4, tString),
				msg("created_at", 5, timestamp),
				msg("updated_at", 6, timestamp),
			),
			message(nameEntry,
				scalar("id", 1, tString),
				scalar("kind", 2, tString),
				scalar("category", 3, tString),
				scalar("name", 4, tString),
				scalar("ciphertext", 5, tBytes),
				scalar("nonce", 6, tBytes),
				msg("legacy_username", 7, bytesWrap),
				msg("legacy_notes", 8, bytesWrap),
				msg("url", 9, stringWrap),
				msg("property_id", 10, stringWrap),
				scalar("created_by", 11, tString),
				scalar("updated_by", 12, tString),
				msg("created_at", 13, timestamp),
				msg("updated_at", 14, timestamp),
				msg("rotated_at", 15, timestamp),
			),
			message(nameAccessLogEntry,
				scalar("id", 1, tInt64),
				scalar("entry_id", 2, tString),
				scalar("principal_id", 3, tString),
				scalar("action", 4, tString),
				scalar("entry_name", 5, tString),
				msg("created_at", 6, timestamp),
			),
			message(nameGetMasterKeyRequest),
			message(nameMasterKeyResponse, msg("record", 1, local(nameMasterKey))),
			message(namePutMasterKeyRequest,
				msg("record", 1, local(nameMasterKey)),
				scalar("if_absent", 2, tBool),
			),
			message(namePutMasterKeyResponse, scalar("written", 1, tBool)),
			message(nameInsertEntryRequest, msg("entry", 1, local(nameEntry))),
			message(nameEntryResponse, msg("entry", 1, local(nameEntry))),
			message(nameGetEntryRequest, scalar("id", 1, tString)),
			message(nameListEntriesRequest),
			message(nameListEntriesResponse, repeated("entries", 1, local(nameEntry))),
			message(nameUpdateEntryRequest, msg("entry", 1, local(nameEntry))),
			message(nameDeleteEntryRequest, scalar("id", 1, tString)),
			message(nameAppendAccessLogRequest, msg("entry", 1, local(nameAccessLogEntry))),
			message(nameAppendAccessLogResponse, scalar("id", 1, tInt64)),
			message(nameListAccessLogRequest, scalar("entry_id", 1, tString)),
			message(nameListAccessLogResponse, repeated("entries", 1, local(nameAccessLogEntry))),
			message(namePingRequest),
			message(namePingResponse, scalar("status", 1, tString)),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("StoreService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				rpcMethod("GetMasterKey", local(nameGetMasterKeyRequest), local(nameMasterKeyResponse)),
				rpcMethod("PutMasterKey", local(namePutMasterKeyRequest), local(namePutMasterKeyResponse)),
				rpcMethod("InsertEntry", local(nameInsertEntryRequest), local(nameEntryResponse)),
				rpcMethod("GetEntry", local(nameGetEntryRequest), local(nameEntryResponse)),
				rpcMethod("ListEntries", local(nameListEntriesRequest), local(nameListEntriesResponse)),
				rpcMethod("UpdateEntry", local(nameUpdateEntryRequest), empty),
				rpcMethod("DeleteEntry", local(nameDeleteEntryRequest), empty),
				rpcMethod("AppendAccessLog", local(nameAppendAccessLogRequest), local(nameAppendAccessLogResponse)),
				rpcMethod("ListAccessLog", local(nameListAccessLogRequest), local(nameListAccessLogResponse)),
				rpcMethod("Ping", local(namePingRequest), local(namePingResponse)),
			},
		}},
	}
}

// StoreFile is the compiled descriptor of store.proto.
var StoreFile = mustBuildStoreFile()

func mustBuildStoreFile() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(storeFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("rpc: build %s: %v", protoPath, err))
	}
	return fd
}

// newWire returns an empty wire message of the named store.proto type.
func newWire(name protoreflect.Name) *dynamicpb.Message {
	md := StoreFile.Messages().ByName(name)
	if md == nil {
		panic(fmt.Sprintf("rpc: unknown message %s", name))
	}
	return dynamicpb.NewMessage(md)
}
