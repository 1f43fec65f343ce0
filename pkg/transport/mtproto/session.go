package mtproto

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/gotd/td/session"
)

var ErrBadSession = errors.New("malformed session string")

const authKeySize = 256

// Production data center addresses, as hard-coded by every MTProto client library.
var productionDCs = map[int]string{
	1: "149.154.175.53",
	2: "149.154.167.51",
	3: "149.154.175.100",
	4: "149.154.167.91",
	5: "91.108.56.130",
}

// PyrogramSession is the decoded content of a Pyrogram string session.
type PyrogramSession struct {
	DC       int
	APIID    int // zero for the two legacy layouts
	TestMode bool
	AuthKey  []byte
	UserID   int64
	IsBot    bool
}

// ParsePyrogramSession decodes the three layouts Pyrogram has produced:
//
//	>BI?256sQ?  dc, api_id, test_mode, auth_key, user_id (64 bit), is_bot
//	>B?256sQ?   dc, test_mode, auth_key, user_id (64 bit), is_bot
//	>B?256sI?   dc, test_mode, auth_key, user_id (32 bit), is_bot
func ParsePyrogramSession(s string) (*PyrogramSession, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSession, err)
	}

	var (
		p   PyrogramSession
		off int
	)
	switch len(raw) {
	case 1 + 4 + 1 + authKeySize + 8 + 1:
		p.DC = int(raw[0])
		p.APIID = int(binary.BigEndian.Uint32(raw[1:5]))
		off = 5
	case 1 + 1 + authKeySize + 8 + 1, 1 + 1 + authKeySize + 4 + 1:
		p.DC = int(raw[0])
		off = 1
	default:
		return nil, fmt.Errorf("%w: unexpected length %d", ErrBadSession, len(raw))
	}

	p.TestMode = raw[off] != 0
	off++
	p.AuthKey = append([]byte(nil), raw[off:off+authKeySize]...)
	off += authKeySize
	if len(raw)-off == 4+1 {
		p.UserID = int64(binary.BigEndian.Uint32(raw[off : off+4]))
		off += 4
	} else {
		p.UserID = int64(binary.BigEndian.Uint64(raw[off : off+8]))
		off += 8
	}
	p.IsBot = raw[off] != 0
	return &p, nil
}

// Data converts the session into gotd session data for a production DC.
func (p *PyrogramSession) Data() (*session.Data, error) {
	if p.TestMode {
		return nil, fmt.Errorf("%w: test server sessions are not supported", ErrBadSession)
	}
	ip, ok := productionDCs[p.DC]
	if !ok {
		return nil, fmt.Errorf("%w: unknown DC %d", ErrBadSession, p.DC)
	}
	return &session.Data{
		DC:        p.DC,
		Addr:      net.JoinHostPort(ip, strconv.Itoa(443)),
		AuthKey:   p.AuthKey,
		AuthKeyID: authKeyID(p.AuthKey),
	}, nil
}

// authKeyID is the low 64 bits of SHA1(auth_key).
func authKeyID(key []byte) []byte {
	sum := sha1.Sum(key)
	return append([]byte(nil), sum[12:20]...)
}

// DecodeSession turns a session string in the given format into gotd session data.
func DecodeSession(format, s string) (*session.Data, error) {
	switch format {
	case "pyrogram", "":
		p, err := ParsePyrogramSession(s)
		if err != nil {
			return nil, err
		}
		return p.Data()
	case "telethon":
		data, err := session.TelethonSession(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSession, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrBadSession, format)
	}
}
