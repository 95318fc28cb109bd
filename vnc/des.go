package vnc

import "crypto/des"

// reverseBits flips the bit order of a single byte. VNC's DES auth key is
// built from the password bytes with each byte's bits reversed before use
// as a DES key; this is a wire quirk inherited from the original RealVNC
// implementation, not a real security property. Ported from rfb.py's
// RFBDes.setKey via pyDes's bit convention.
func reverseBits(b byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out <<= 1
		out |= b & 1
		b >>= 1
	}
	return out
}

// vncAuthKey derives the 8-byte DES key from a VNC password: truncated or
// zero-padded to 8 bytes, then bit-reversed byte by byte.
func vncAuthKey(password string) []byte {
	key := make([]byte, 8)
	copy(key, password)
	for i := range key {
		key[i] = reverseBits(key[i])
	}
	return key
}

// vncAuthResponse computes the 16-byte DES challenge response for VNC
// authentication (RFC 6143 §7.2.2): the 16-byte server challenge is
// encrypted as two independent 8-byte ECB blocks under vncAuthKey(password).
func vncAuthResponse(password string, challenge []byte) ([]byte, error) {
	if len(challenge) != 16 {
		return nil, newProtocolError("vnc auth challenge must be 16 bytes", nil)
	}
	block, err := des.NewCipher(vncAuthKey(password))
	if err != nil {
		return nil, &AuthError{Reason: err.Error()}
	}
	response := make([]byte, 16)
	block.Encrypt(response[0:8], challenge[0:8])
	block.Encrypt(response[8:16], challenge[8:16])
	return response, nil
}
