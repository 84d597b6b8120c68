package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// reply is one decoded RESP value. Nil bulk strings and nil arrays both set
// isNil.
type reply struct {
	kind  byte
	str   string
	num   int64
	elems []reply
	isNil bool
}

type redisError string

func (e redisError) Error() string { return "redis error: " + string(e) }

func writeCommand(w *bufio.Writer, cmd string, args ...string) error {
	if _, err := fmt.Fprintf(w, "*%d\r\n", 1+len(args)); err != nil {
		return err
	}
	if err := writeBulk(w, cmd); err != nil {
		return err
	}
	for _, a := range args {
		if err := writeBulk(w, a); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeBulk(w *bufio.Writer, s string) error {
	_, err := fmt.Fprintf(w, "$%d\r\n%s\r\n", len(s), s)
	return err
}

func readLine(r *bufio.Reader) (string, error) {
	b, err := r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(b) > 0 {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	if len(b) < 2 || b[len(b)-2] != '\r' {
		return "", fmt.Errorf("malformed line %q", b)
	}
	return string(b[:len(b)-2]), nil
}

// readReply decodes a single RESP value, recursing into arrays. A server
// error reply is returned as a redisError.
func readReply(r *bufio.Reader) (reply, error) {
	line, err := readLine(r)
	if err != nil {
		return reply{}, err
	}
	if line == "" {
		return reply{}, errors.New("empty reply")
	}
	rep := reply{kind: line[0]}
	body := line[1:]
	switch rep.kind {
	case '+':
		rep.str = body
	case '-':
		return reply{}, redisError(body)
	case ':':
		rep.num, err = strconv.ParseInt(body, 10, 64)
		if err != nil {
			return reply{}, fmt.Errorf("bad integer reply %q", line)
		}
	case '$':
		n, err := strconv.Atoi(body)
		if err != nil {
			return reply{}, fmt.Errorf("bad bulk length %q", line)
		}
		if n < 0 {
			rep.isNil = true
			return rep, nil
		}
		buf := make([]byte, n+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return reply{}, err
		}
		rep.str = string(buf[:n])
	case '*':
		n, err := strconv.Atoi(body)
		if err != nil {
			return reply{}, fmt.Errorf("bad array length %q", line)
		}
		if n < 0 {
			rep.isNil = true
			return rep, nil
		}
		rep.elems = make([]reply, 0, n)
		for i := 0; i < n; i++ {
			el, err := readReply(r)
			if err != nil {
				return reply{}, err
			}
			rep.elems = append(rep.elems, el)
		}
	default:
		return reply{}, fmt.Errorf("unexpected reply: %s", line)
	}
	return rep, nil
}

func readOK(r *bufio.Reader) error {
	rep, err := readReply(r)
	if err != nil {
		return err
	}
	if rep.kind != '+' {
		return fmt.Errorf("redis not OK: %c%s", rep.kind, rep.str)
	}
	return nil
}

// readBRPOP returns the list key and the popped payload. A timed out BRPOP
// yields empty strings and no error.
func readBRPOP(r *bufio.Reader) (key string, payload string, err error) {
	rep, err := readReply(r)
	if err != nil {
		return "", "", err
	}
	if rep.isNil {
		return "", "", nil
	}
	switch rep.kind {
	case '*':
		if len(rep.elems) == 0 {
			return "", "", nil
		}
		if len(rep.elems) != 2 {
			return "", "", fmt.Errorf("unexpected BRPOP reply with %d elements", len(rep.elems))
		}
		return rep.elems[0].str, rep.elems[1].str, nil
	case '$':
		return "", rep.str, nil
	default:
		return "", "", fmt.Errorf("unexpected BRPOP reply type %c", rep.kind)
	}
}
