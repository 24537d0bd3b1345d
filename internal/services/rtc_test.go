package services

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"io"
	"strings"
	"testing"
)

const (
	testAppID   = "970CA35de60c44645bbae8a215061b33"
	testAppCert = "5CFd2fd1755d40ecb72977518be15d3b"
)

func TestBuildRTCToken_Structure(t *testing.T) {
	token, err := buildRTCToken(testAppID, testAppCert, "dischat-12", "42", RTCRolePublisher, 3600)
	if err != nil {
		t.Fatalf("buildRTCToken() error: %v", err)
	}

	if !strings.HasPrefix(token, "007") {
		t.Fatalf("token should start with version 007, got %q", token[:8])
	}

	compressed, err := base64.StdEncoding.DecodeString(token[3:])
	if err != nil {
		t.Fatalf("token body is not valid base64: %v", err)
	}

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("token body is not zlib-compressed: %v", err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decompressing token: %v", err)
	}

	// First field is the length-prefixed HMAC-SHA256 signature
	if len(content) < 2 {
		t.Fatal("decompressed token too short")
	}
	sigLen := binary.LittleEndian.Uint16(content[:2])
	if sigLen != 32 {
		t.Errorf("signature length = %d, expected 32", sigLen)
	}

	// The message after the signature carries the app id and the
	// channel and uid strings
	message := content[2+sigLen:]
	if !bytes.Contains(message, []byte(testAppID)) {
		t.Error("message should contain the app id")
	}
	if !bytes.Contains(message, []byte("dischat-12")) {
		t.Error("message should contain the channel name")
	}
	if !bytes.Contains(message, []byte("42")) {
		t.Error("message should contain the uid")
	}
}

func TestBuildRTCToken_RejectsBadCredentials(t *testing.T) {
	if _, err := buildRTCToken("short", testAppCert, "ch", "1", RTCRolePublisher, 3600); err == nil {
		t.Error("short app id should be rejected")
	}
	if _, err := buildRTCToken(testAppID, "short", "ch", "1", RTCRolePublisher, 3600); err == nil {
		t.Error("short app certificate should be rejected")
	}
}

func TestBuildRTCToken_TokensDiffer(t *testing.T) {
	first, err := buildRTCToken(testAppID, testAppCert, "ch", "1", RTCRolePublisher, 3600)
	if err != nil {
		t.Fatalf("buildRTCToken() error: %v", err)
	}
	second, err := buildRTCToken(testAppID, testAppCert, "ch", "1", RTCRolePublisher, 3600)
	if err != nil {
		t.Fatalf("buildRTCToken() error: %v", err)
	}

	// Salt is random per token
	if first == second {
		t.Error("two tokens for the same channel should not be identical")
	}
}

func TestRTCPrivileges(t *testing.T) {
	sub := rtcPrivileges(RTCRoleSubscriber, 600)
	if len(sub) != 1 {
		t.Errorf("subscriber should hold 1 privilege, got %d", len(sub))
	}
	if sub[rtcPrivilegeJoinChannel] != 600 {
		t.Errorf("join privilege expire = %d, expected 600", sub[rtcPrivilegeJoinChannel])
	}

	pub := rtcPrivileges(RTCRolePublisher, 600)
	if len(pub) != 4 {
		t.Errorf("publisher should hold 4 privileges, got %d", len(pub))
	}
	for _, p := range []uint16{rtcPrivilegeJoinChannel, rtcPrivilegePublishAudio, rtcPrivilegePublishVideo, rtcPrivilegePublishData} {
		if pub[p] != 600 {
			t.Errorf("privilege %d expire = %d, expected 600", p, pub[p])
		}
	}
}

func TestPackHelpers_LittleEndian(t *testing.T) {
	buf := new(bytes.Buffer)
	packUint16(buf, 0x0102)
	packUint32(buf, 0x03040506)

	expected := []byte{0x02, 0x01, 0x06, 0x05, 0x04, 0x03}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("packed bytes = %v, expected %v", buf.Bytes(), expected)
	}
}

func TestPackString(t *testing.T) {
	buf := new(bytes.Buffer)
	packString(buf, "abc")

	expected := []byte{0x03, 0x00, 'a', 'b', 'c'}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("packed string = %v, expected %v", buf.Bytes(), expected)
	}
}

func TestPackPrivileges_SortedByKey(t *testing.T) {
	buf := new(bytes.Buffer)
	packPrivileges(buf, map[uint16]uint32{
		rtcPrivilegePublishData: 10,
		rtcPrivilegeJoinChannel: 10,
	})

	data := buf.Bytes()
	if binary.LittleEndian.Uint16(data[:2]) != 2 {
		t.Fatalf("privilege count = %d, expected 2", binary.LittleEndian.Uint16(data[:2]))
	}
	first := binary.LittleEndian.Uint16(data[2:4])
	if first != rtcPrivilegeJoinChannel {
		t.Errorf("first privilege key = %d, expected join (%d)", first, rtcPrivilegeJoinChannel)
	}
}
