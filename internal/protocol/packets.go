package protocol

// OpRemoveEntity hides one entity from a client's view.
const OpRemoveEntity = 0x1D

// RemoveEntity is the fixed 5-byte packet removing an entity client-side.
func RemoveEntity(serial uint32) []byte {
	w := NewWriter(OpRemoveEntity, 5)
	w.WriteUint32(serial)
	return w.Bytes()
}
