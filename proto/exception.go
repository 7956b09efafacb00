package proto

import (
	"github.com/katanacap/klickhouse/errs"
	"github.com/katanacap/klickhouse/wire"
)

// ReadException reads one Exception packet body (the chain of nested causes
// terminated by a has_nested=0 byte) from r into the shared
// errs.ServerException type. The leading packet tag is assumed already
// consumed.
func ReadException(r *wire.Reader) (*errs.ServerException, error) {
	root := &errs.ServerException{}
	cur := root

	for {
		codeBuf, err := r.Full(4)
		if err != nil {
			return nil, err
		}
		cur.Code = int32(le.Uint32(codeBuf))

		if cur.Name, err = r.String(); err != nil {
			return nil, err
		}
		if cur.Message, err = r.String(); err != nil {
			return nil, err
		}
		if cur.StackTrace, err = r.String(); err != nil {
			return nil, err
		}

		hasNested, err := r.Byte()
		if err != nil {
			return nil, err
		}

		if hasNested == 0 {
			break
		}

		cur.Nested = &errs.ServerException{}
		cur = cur.Nested
	}

	return root, nil
}
