package settings

import "context"

// The typed getters return def when the key is missing or holds a value
// of another kind.

func GetBool(ctx context.Context, s Store, key string, def bool) (bool, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return def, nil
}

func GetInt(ctx context.Context, s Store, key string, def int32) (int32, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	if i, ok := v.AsInt(); ok {
		return i, nil
	}
	return def, nil
}

func GetLong(ctx context.Context, s Store, key string, def int64) (int64, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	if i, ok := v.AsLong(); ok {
		return i, nil
	}
	return def, nil
}

func GetString(ctx context.Context, s Store, key, def string) (string, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	if str, ok := v.AsString(); ok {
		return str, nil
	}
	return def, nil
}

func GetFloat(ctx context.Context, s Store, key string, def float32) (float32, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	return def, nil
}
