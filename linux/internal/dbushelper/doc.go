/*
Package dbushelper provides DBus specific helpers to:
- Marshal NetworkManager connection settings to a provided struct.
- Wrap errors returned from DBus calls with call data.

It also has constants defined for various DBus related
bus and property names.
*/
package dbushelper
