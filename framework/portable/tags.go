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

package portable

// Tags identify the kind of the value that follows in the stream.
const (
	TagByte           byte = 1
	TagShort          byte = 2
	TagInt            byte = 3
	TagLong           byte = 4
	TagFloat          byte = 5
	TagDouble         byte = 6
	TagChar           byte = 7
	TagBool           byte = 8
	TagString         byte = 9
	TagGUID           byte = 10
	TagDate           byte = 11
	TagByteArray      byte = 12
	TagShortArray     byte = 13
	TagIntArray       byte = 14
	TagLongArray      byte = 15
	TagFloatArray     byte = 16
	TagDoubleArray    byte = 17
	TagCharArray      byte = 18
	TagBoolArray      byte = 19
	TagStringArray    byte = 20
	TagGUIDArray      byte = 21
	TagDateArray      byte = 22
	TagArray          byte = 23
	TagCollection     byte = 24
	TagDictionary     byte = 25
	TagMapEntry       byte = 26
	TagWrapped        byte = 27
	TagEnum           byte = 28
	TagEnumArray      byte = 29
	TagDecimal        byte = 30
	TagDecimalArray   byte = 31
	TagTimestamp      byte = 33
	TagTimestampArray byte = 34

	TagNull   byte = 101
	TagHandle byte = 102
	TagFull   byte = 103
)

// ProtocolVersion is the only full object header version understood.
const ProtocolVersion byte = 1

// Offsets of the full object header fields, relative to the header start.
const (
	OffsetVersion  = 1
	OffsetUserType = 2
	OffsetTypeID   = 3
	OffsetHash     = 7
	OffsetLength   = 11
	OffsetRaw      = 15
	// HeaderLength is the size of the full object header.
	HeaderLength = 19
	// HandleLength is the size of an encoded handle.
	HandleLength = 5
)

// Kinds of collection and dictionary, carried in the stream after the count.
// The decoder does not distinguish between them.
const (
	CollectionUserSet   byte = 0
	CollectionUserList  byte = 1
	CollectionArrayList byte = 2
	CollectionLinked    byte = 3
	CollectionHashSet   byte = 4
	CollectionLinkedSet byte = 5

	DictionaryHash   byte = 1
	DictionaryLinked byte = 2
)
