package value

// Sentinel holds either a special token (Special set, Value zero) or a
// plain value of the wrapped codec.
type Sentinel[T any] struct {
	Special bool
	Value   T
}

// Special returns the sentinel form.
func Special[T any]() Sentinel[T] {
	return Sentinel[T]{Special: true}
}

// Plain wraps an ordinary value.
func Plain[T any](v T) Sentinel[T] {
	return Sentinel[T]{Value: v}
}

// Sentinel tokens understood by the device.
const (
	TokenAuto      = "auto"
	TokenNone      = "none"
	TokenUnlimited = "unlimited"
	TokenDisabled  = "disabled"
)

type sentinelCodec[T any] struct {
	base  Codec[T]
	token string
}

// WithToken accepts token in addition to everything base accepts.
func WithToken[T any](base Codec[T], token string) Codec[Sentinel[T]] {
	return sentinelCodec[T]{base: base, token: token}
}

// Auto accepts "auto".
func Auto[T any](base Codec[T]) Codec[Sentinel[T]] { return WithToken(base, TokenAuto) }

// None accepts "none".
func None[T any](base Codec[T]) Codec[Sentinel[T]] { return WithToken(base, TokenNone) }

// Unlimited accepts "unlimited".
func Unlimited[T any](base Codec[T]) Codec[Sentinel[T]] { return WithToken(base, TokenUnlimited) }

// Disabled accepts "disabled".
func Disabled[T any](base Codec[T]) Codec[Sentinel[T]] { return WithToken(base, TokenDisabled) }

func (c sentinelCodec[T]) Parse(text string) Result[Sentinel[T]] {
	if text == c.token {
		return ValidResult(Special[T]())
	}
	r := c.base.Parse(text)
	switch r.Outcome {
	case Valid:
		return ValidResult(Plain(r.Value))
	case Invalid:
		return Result[Sentinel[T]]{Outcome: Invalid, Err: r.Err}
	default:
		return AbsentResult[Sentinel[T]]()
	}
}

func (c sentinelCodec[T]) Encode(v Sentinel[T]) string {
	if v.Special {
		return c.token
	}
	return c.base.Encode(v.Value)
}

// IsSpecial reports whether s holds the sentinel token. Reference handling
// uses it to skip tokens like "none" that name no entity.
func (s Sentinel[T]) IsSpecial() bool { return s.Special }
