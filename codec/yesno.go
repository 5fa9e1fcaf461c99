package codec

// YesNo returns a Codec for jn tokens: "J" is true, "N" is false.
func YesNo() Codec[bool] { return yesNoCodec{} }

type yesNoCodec struct{}

func (yesNoCodec) Decode(token string) (bool, error) {
	switch token {
	case "J":
		return true, nil
	case "N":
		return false, nil
	}
	return false, formatError("yes/no", token)
}

func (yesNoCodec) Encode(v bool) (string, error) {
	if v {
		return "J", nil
	}
	return "N", nil
}
