package objectenc

// File holds raw file bytes. Header: "FILE\0".
type File struct {
	Data []byte
}

var fileHeader = []byte("FILE\x00")

func (f *File) Kind() Kind { return KindFile }

func (f *File) Encode() ([]byte, error) {
	buf := make([]byte, 0, len(fileHeader)+len(f.Data))
	buf = append(buf, fileHeader...)
	buf = append(buf, f.Data...)
	return buf, nil
}

func decodeFile(payload []byte) (*File, error) {
	return &File{Data: append([]byte(nil), payload...)}, nil
}
