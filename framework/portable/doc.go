// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package portable decodes the portable binary object format into Go object
// graphs.
//
// # Object encoding details
//
// Every value starts with a one byte tag. Composite objects are encoded in
// full the first time they are written:
//
//	tag       byte  // TagFull
//	version   byte  // ProtocolVersion
//	userType  bool  // false for system types
//	typeId    int32 // the registered type identifier
//	hash      int32 // identity hash, carried but not used when decoding
//	length    int32 // total encoded length, including this header
//	rawOffset int32 // offset from the header start to the raw section
//	fields    ...   // (fieldId int32, length int32, tagged value) entries
//	raw       ...   // values written through the raw writer
//
// Later references to the same object are encoded as a handle:
//
//	tag  byte  // TagHandle
//	back int32 // distance back from this tag to the referenced object
//
// An object may also be carried in wrapped form, which keeps it as opaque
// bytes until it is explicitly deserialized:
//
//	tag    byte  // TagWrapped
//	length int32 // length of data
//	data   ...   // the nested object, possibly preceded by other data
//	offset int32 // offset of the nested object within data
//
// A Reader decodes one top level value and everything it references. Named
// fields are located by scanning the field entries of the object currently
// being decoded, so a type's reader may request its fields in any order.
package portable
