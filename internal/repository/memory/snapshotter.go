package memory

// Snapshotter 单个 store 的整体序列化 / 反序列化
type Snapshotter interface {
	MarshalSnapshot() ([]byte, error)
	UnmarshalSnapshot(data []byte) error
}

type snapshotFuncs struct {
	marshal   func() ([]byte, error)
	unmarshal func([]byte) error
}

func (s snapshotFuncs) MarshalSnapshot() ([]byte, error)    { return s.marshal() }
func (s snapshotFuncs) UnmarshalSnapshot(data []byte) error { return s.unmarshal(data) }
