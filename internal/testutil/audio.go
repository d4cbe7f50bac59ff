// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/bogem/id3v2"
)

// MP3FrameLength is the size of one MPEG-1 Layer III frame at 128 kbit/s and 44.1 kHz.
const MP3FrameLength = 417

// BuildMP3 returns an ID3v2.4 tag (title only, omitted when empty) followed
// by frames of silent 128 kbit/s audio.
func BuildMP3(title string, frames int) []byte {
	var buf bytes.Buffer
	if title != "" {
		tag := id3v2.NewEmptyTag()
		tag.SetVersion(4)
		tag.SetDefaultEncoding(id3v2.EncodingUTF8)
		tag.SetTitle(title)
		if _, err := tag.WriteTo(&buf); err != nil {
			panic(err)
		}
	}
	frame := make([]byte, MP3FrameLength)
	copy(frame, []byte{0xff, 0xfb, 0x90, 0x64})
	for i := 0; i < frames; i++ {
		buf.Write(frame)
	}
	// A bare frame stream still needs the sync header up front for detection.
	if frames == 0 && title == "" {
		buf.Write([]byte{0xff, 0xfb, 0x90, 0x64})
	}
	return buf.Bytes()
}

// AppendID3v1 appends a 128 byte ID3v1 trailer carrying title to data.
func AppendID3v1(data []byte, title string) []byte {
	trailer := make([]byte, 128)
	copy(trailer, "TAG")
	copy(trailer[3:33], title)
	trailer[127] = 0xff // Genre: none.
	return append(append([]byte{}, data...), trailer...)
}

// BuildWAV returns a 16-bit PCM RIFF/WAVE file of silence, with a LIST/INFO
// INAM chunk when title is set.
func BuildWAV(title string, sampleRate, channels int, samples int) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	dataSize := samples * blockAlign

	var body bytes.Buffer
	body.WriteString("WAVE")

	body.WriteString("fmt ")
	_ = binary.Write(&body, binary.LittleEndian, uint32(16))
	_ = binary.Write(&body, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&body, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&body, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&body, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&body, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&body, binary.LittleEndian, uint16(bitsPerSample))

	if title != "" {
		name := append([]byte(title), 0)
		if len(name)%2 == 1 {
			name = append(name, 0)
		}
		body.WriteString("LIST")
		_ = binary.Write(&body, binary.LittleEndian, uint32(4+8+len(name)))
		body.WriteString("INFO")
		body.WriteString("INAM")
		_ = binary.Write(&body, binary.LittleEndian, uint32(len(name)))
		body.Write(name)
	}

	body.WriteString("data")
	_ = binary.Write(&body, binary.LittleEndian, uint32(dataSize))
	body.Write(make([]byte, dataSize))

	var out bytes.Buffer
	out.WriteString("RIFF")
	_ = binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// BuildFLAC returns a FLAC stream header with STREAMINFO and, when title is
// set, a VORBIS_COMMENT block. No audio frames follow.
func BuildFLAC(title string, sampleRate int, totalSamples uint64) []byte {
	var out bytes.Buffer
	out.WriteString("fLaC")

	streamInfo := make([]byte, 34)
	binary.BigEndian.PutUint16(streamInfo[0:], 4096)
	binary.BigEndian.PutUint16(streamInfo[2:], 4096)
	// 20 bits sample rate, 3 bits channels-1 (stereo), 5 bits bps-1 (16), 36 bits samples.
	packed := uint64(sampleRate)<<44 | uint64(1)<<41 | uint64(15)<<36 | (totalSamples & 0xfffffffff)
	binary.BigEndian.PutUint64(streamInfo[10:], packed)

	writeBlock := func(blockType byte, last bool, data []byte) {
		header := blockType
		if last {
			header |= 0x80
		}
		out.WriteByte(header)
		out.Write([]byte{byte(len(data) >> 16), byte(len(data) >> 8), byte(len(data))})
		out.Write(data)
	}

	writeBlock(0, title == "", streamInfo)

	if title != "" {
		var comment bytes.Buffer
		vendor := "reference libFLAC 1.4.3"
		_ = binary.Write(&comment, binary.LittleEndian, uint32(len(vendor)))
		comment.WriteString(vendor)
		entries := []string{"ARTIST=Massey", "TITLE=" + title}
		_ = binary.Write(&comment, binary.LittleEndian, uint32(len(entries)))
		for _, e := range entries {
			_ = binary.Write(&comment, binary.LittleEndian, uint32(len(e)))
			comment.WriteString(e)
		}
		writeBlock(4, true, comment.Bytes())
	}
	return out.Bytes()
}
